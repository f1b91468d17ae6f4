package service

import (
	"context"
	"encoding/json"
	"log"

	"legal-research-be/internal/dto"
	"legal-research-be/internal/repository/contract"
	"legal-research-be/pkg/cache"
	"legal-research-be/pkg/citation"
	"legal-research-be/pkg/embedding"
	"legal-research-be/pkg/events"
	pktNats "legal-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pgvector/pgvector-go"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	docRepo           contract.DocumentRepository
	embeddingProvider embedding.EmbeddingProvider
	citationGraph     *citation.Graph
	cacheManager      *cache.Manager
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	docRepo contract.DocumentRepository,
	embeddingProvider embedding.EmbeddingProvider,
	citationGraph *citation.Graph,
	cacheManager *cache.Manager,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		docRepo:           docRepo,
		embeddingProvider: embeddingProvider,
		citationGraph:     citationGraph,
		cacheManager:      cacheManager,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document embedding for DocumentId: %s", payload.DocumentId)

	doc, err := cs.docRepo.FindById(ctx, payload.DocumentId)
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	res, err := cs.embeddingProvider.Generate(doc.Content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	vec := pgvector.NewVector(res.Embedding.Values)
	doc.Embedding = &vec
	if err := cs.docRepo.Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to store embedding for document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	deprecated, err := cs.docRepo.DeprecatePrevious(ctx, doc.Collection, doc.Title, doc.Id)
	if err != nil {
		log.Printf("[WARN] Failed to deprecate previous versions of %q: %v", doc.Title, err)
	} else if deprecated > 0 {
		log.Printf("[INFO] Deprecated %d previous version(s) of %q in %s", deprecated, doc.Title, doc.Collection)
	}

	refs := cs.citationGraph.Record(ctx, doc.Id.String(), doc.Content)
	if len(refs) > 0 {
		log.Printf("[INFO] Tracked %d citation(s) from document %s", len(refs), payload.DocumentId)
	}

	// New content invalidates earlier answers; embeddings stay valid.
	cs.cacheManager.InvalidateQueries(ctx)

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngested(doc.Id.String(), doc.Collection)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish document.ingested event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document processed: %s (%s)", payload.DocumentId, doc.Collection)
	msg.Ack()
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"legal-research-be/internal/config"
	"legal-research-be/internal/model"
	"legal-research-be/internal/repository/implementation"
	"legal-research-be/pkg/database"
	"legal-research-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type seedDocument struct {
	Collection string
	Title      string
	Content    string
	Metadata   map[string]interface{}
}

// A small starter corpus so the retrieval pipeline has something to answer
// from on a fresh database.
var seedDocuments = []seedDocument{
	{
		Collection: "ticaret_hukuku",
		Title:      "TTK Madde 11",
		Content: "TTK m.11: Ticari işletme, esnaf işletmesi için öngörülen sınırı aşan düzeyde gelir sağlamayı " +
			"hedef tutan faaliyetlerin devamlı ve bağımsız şekilde yürütüldüğü işletmedir. " +
			"Ticari işletme ile esnaf işletmesi arasındaki sınıra ilişkin düzenleme için bkz. TTK m.12.",
		Metadata: map[string]interface{}{"kaynak": "TTK", "madde_no": "11"},
	},
	{
		Collection: "ticaret_hukuku",
		Title:      "TTK Madde 12",
		Content: "TTK m.12: Bir ticari işletmeyi, kısmen de olsa, kendi adına işleten kişiye tacir denir. " +
			"Tacir sıfatının sonuçları TTK m.18 hükmünde düzenlenmiştir.",
		Metadata: map[string]interface{}{"kaynak": "TTK", "madde_no": "12"},
	},
	{
		Collection: "borclar_hukuku",
		Title:      "TBK Madde 299",
		Content: "TBK m.299: Kira sözleşmesi, kiraya verenin bir şeyin kullanılmasını veya kullanmayla birlikte " +
			"ondan yararlanılmasını kiracıya bırakmayı, kiracının da buna karşılık kararlaştırılan kira " +
			"bedelini ödemeyi üstlendiği sözleşmedir.",
		Metadata: map[string]interface{}{"kaynak": "TBK", "madde_no": "299"},
	},
	{
		Collection: "icra_iflas",
		Title:      "İİK Madde 68",
		Content: "İİK m.68: Talebine itiraz edilen alacaklının takibi, imzası ikrar veya noterlikçe tasdik edilen " +
			"borç ikrarını içeren bir senede yahut resmi dairelerin veya yetkili makamların yetkileri " +
			"dahilinde ve usulüne göre verdikleri bir makbuz veya belgeye müstenitse, alacaklı itirazın " +
			"kendisine tebliği tarihinden itibaren altı ay içinde itirazın kaldırılmasını isteyebilir.",
		Metadata: map[string]interface{}{"kaynak": "İİK", "madde_no": "68"},
	},
	{
		Collection: "medeni_hukuk",
		Title:      "TMK Madde 2",
		Content: "TMK m.2: Herkes, haklarını kullanırken ve borçlarını yerine getirirken dürüstlük kurallarına " +
			"uymak zorundadır. Bir hakkın açıkça kötüye kullanılmasını hukuk düzeni korumaz.",
		Metadata: map[string]interface{}{"kaynak": "TMK", "madde_no": "2"},
	},
	{
		Collection: "tuketici_haklari",
		Title:      "TKHK Madde 8",
		Content: "TKHK m.8: Ayıplı mal, tüketiciye teslimi anında, taraflarca kararlaştırılmış olan örnek ya da " +
			"modele uygun olmaması ya da objektif olarak sahip olması gereken özellikleri taşımaması " +
			"nedeniyle sözleşmeye aykırı olan maldır. Ayıplı maldan sorumluluk için ayrıca bkz. TBK m.219.",
		Metadata: map[string]interface{}{"kaynak": "TKHK", "madde_no": "8"},
	},
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	provider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	if err != nil {
		log.Fatal("Error: Failed to initialize embedding provider:", err)
	}

	docRepo := implementation.NewDocumentRepository(db)
	ctx := context.Background()

	log.Printf("Seeding %d legal documents...", len(seedDocuments))

	for _, seed := range seedDocuments {
		res, err := provider.Generate(seed.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Fatalf("Error: Failed to embed %q: %v", seed.Title, err)
		}

		metadata, _ := json.Marshal(seed.Metadata)
		vec := pgvector.NewVector(res.Embedding.Values)
		doc := model.LegalDocument{
			Id:         uuid.New(),
			Collection: seed.Collection,
			Title:      seed.Title,
			Content:    seed.Content,
			Metadata:   datatypes.JSON(metadata),
			Embedding:  &vec,
			Status:     model.DocumentStatusActive,
			Version:    1,
			CreatedAt:  time.Now(),
		}
		if err := docRepo.Create(ctx, &doc); err != nil {
			log.Fatalf("Error: Failed to insert %q: %v", seed.Title, err)
		}

		if n, err := docRepo.DeprecatePrevious(ctx, seed.Collection, seed.Title, doc.Id); err != nil {
			log.Printf("Warn: Failed to deprecate previous versions of %q: %v", seed.Title, err)
		} else if n > 0 {
			log.Printf("Deprecated %d previous version(s) of %q", n, seed.Title)
		}

		log.Printf("Seeded: %s (%s)", seed.Title, seed.Collection)
	}

	log.Println("Seeding completed successfully")
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Simplified DTOs for the script
type researchRequest struct {
	Query             string `json:"query"`
	IncludeDeprecated bool   `json:"include_deprecated"`
}

type researchResponse struct {
	Data struct {
		RunId       string   `json:"run_id"`
		Answer      string   `json:"answer"`
		Citations   []string `json:"citations"`
		Confidence  float64  `json:"confidence"`
		ReplanCount int      `json:"replan_count"`
		DurationMs  int64    `json:"duration_ms"`
		Verification *struct {
			Passed bool     `json:"passed"`
			Issues []string `json:"issues"`
		} `json:"verification"`
	} `json:"data"`
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout, pipeline runs can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("=== Legal Research Pipeline Simulation ===\n")

	queries := []researchRequest{
		// Fast path: recognized abbreviation, simple lookup
		{Query: "TTK m.11 nedir?"},
		// Complex analysis across collections
		{Query: "Ticari işletme devri halinde kira sözleşmesinin akıbeti ne olur ve kiracının hakları nelerdir?"},
		// Deprecated versions included
		{Query: "Tüketici ayıplı mal durumunda hangi haklara sahiptir?", IncludeDeprecated: true},
	}

	for i, q := range queries {
		color.Yellow("\n[%d] QUERY: %s", i+1, q.Query)

		start := time.Now()
		resp, body, err := sendRequest("POST", "/research/v1/query", q)
		elapsed := time.Since(start)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		if resp.StatusCode != 200 {
			color.Red("API Error %d: %s", resp.StatusCode, string(body))
			continue
		}

		var res researchResponse
		if err := json.Unmarshal(body, &res); err != nil {
			color.Red("Failed to decode response: %v", err)
			continue
		}

		passed := res.Data.Verification != nil && res.Data.Verification.Passed
		if passed {
			color.Green("PASSED (%.2f confidence, %d replans, %v)", res.Data.Confidence, res.Data.ReplanCount, elapsed)
		} else {
			color.Red("NOT VERIFIED (%.2f confidence, %d replans, %v)", res.Data.Confidence, res.Data.ReplanCount, elapsed)
		}
		fmt.Printf("ANSWER: %s\n", res.Data.Answer)
		fmt.Printf("CITATIONS: %v\n", res.Data.Citations)
	}

	// Citation graph should have grown from the retrieved documents
	color.Yellow("\n[STATS] Citation Graph")
	resp, body, err := sendRequest("GET", "/citation/v1/stats", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var stats map[string]interface{}
	json.Unmarshal(body, &stats)
	prettyPrint(stats)

	color.Cyan("\nSimulation finished")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"go-siren/audio"
	"go-siren/chain"
	"go-siren/cronjobs"
	"go-siren/db"
	"go-siren/evidence"
	"go-siren/geocode"
	"go-siren/handlers"
	"go-siren/routes"
	"go-siren/submission"
	"go-siren/wallet"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	// Print and check env
	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("OPENAI_API_KEY loaded")
	}

	fullnodeURL := os.Getenv("FULLNODE_URL")
	if fullnodeURL == "" {
		log.Fatal("FULLNODE_URL is required")
	}
	moduleAddress := os.Getenv("MODULE_ADDRESS")
	if moduleAddress == "" {
		log.Fatal("MODULE_ADDRESS is required")
	}
	registryAddress := os.Getenv("REGISTRY_ADDRESS")
	signerURL := os.Getenv("WALLET_SIGNER_URL")
	if signerURL == "" {
		log.Fatal("WALLET_SIGNER_URL is required")
	}

	// Init firestore
	firestoreClient, err := db.InitFirestore()
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer db.CloseFirestore() // Firestore client is closed on exit
	store := db.NewStore(firestoreClient)

	// Chain pipeline
	client := chain.NewClient(fullnodeURL)
	queries := chain.NewQueries(client, moduleAddress, registryAddress)
	builder := chain.NewBuilder(moduleAddress, registryAddress)
	submitter := chain.NewSubmitter(client)

	funding := wallet.NewFundingManager(queries, submitter)

	sessions := handlers.NewSessionManager(submission.Config{
		Builder:   builder,
		Submitter: submitter,
		Validator: evidence.NewOpenAIValidator(),
		Store:     store,
		Signer:    wallet.NewRemoteSigner(signerURL),
	})

	// Audio alerts from the cron-refreshed signal cache
	signalCache := audio.NewSignalCache()
	summarizer, err := audio.NewSummarizer(context.Background(), signalCache)
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}

	// Initialize cron jobs
	cronjobs.InitCronJobs(queries, signalCache)

	r := routes.SetupRouter(routes.Deps{
		Sessions:     sessions,
		Queries:      queries,
		Funding:      funding,
		Store:        store,
		Summarizer:   summarizer,
		GeocodeCache: geocode.NewCache(),
	})
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

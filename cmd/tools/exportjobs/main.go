// Command exportjobs dumps the whole job library to a CSV file, in the same
// format as the API export endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"job-ingest/internal/export"
	"job-ingest/internal/storage"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "o", "", "Output file path (default job_library_<date>.csv)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if outPath == "" {
		outPath = export.Filename(time.Now())
	}

	log.Printf("Connecting to DB...")
	db, err := storage.NewDB(dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	jobs, err := db.ListJobs(context.Background())
	if err != nil {
		log.Fatalf("failed to list jobs: %v", err)
	}
	if len(jobs) == 0 {
		log.Println("No jobs to export")
		return
	}

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("failed to create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, jobs); err != nil {
		log.Fatalf("failed to write CSV: %v", err)
	}

	log.Printf("Exported %d job(s) to %s", len(jobs), outPath)
}

package main

import (
	"log"
	"os"

	"author-be/internal/model"
	"author-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	log.Println("Step 1: Setting up Extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Printf("Step 2: Running AutoMigrate for %d Tables...", len(model.All()))
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Hard-deleting a library source leaves its copies in place as plain content.
	log.Println("Step 3: Creating Foreign Keys...")
	postMigrationSQL := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_activities_source') THEN
		   ALTER TABLE activities ADD CONSTRAINT fk_activities_source FOREIGN KEY (source_id) REFERENCES activities(id) ON DELETE SET NULL;
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_activities_parent') THEN
		   ALTER TABLE activities ADD CONSTRAINT fk_activities_parent FOREIGN KEY (parent_id) REFERENCES activities(id) ON DELETE CASCADE;
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_content_elements_source') THEN
		   ALTER TABLE content_elements ADD CONSTRAINT fk_content_elements_source FOREIGN KEY (source_id) REFERENCES content_elements(id) ON DELETE SET NULL;
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_content_elements_activity') THEN
		   ALTER TABLE content_elements ADD CONSTRAINT fk_content_elements_activity FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE;
		 END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_activity_statuses_activity') THEN
		   ALTER TABLE activity_statuses ADD CONSTRAINT fk_activity_statuses_activity FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE;
		 END IF; END $$;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}

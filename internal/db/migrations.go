package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('client', 'freelancer', 'admin')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		client_id UUID NOT NULL REFERENCES users(id),
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		budget NUMERIC(14,2) NOT NULL CHECK (budget > 0),
		deadline DATE NOT NULL,
		category VARCHAR(100) NOT NULL,
		visibility TEXT NOT NULL DEFAULT 'public' CHECK (visibility IN ('public', 'private')),
		skills_required JSONB NOT NULL DEFAULT '[]'::jsonb,
		attached_files JSONB NOT NULL DEFAULT '[]'::jsonb,
		status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'assigned', 'in_progress', 'completed_pending_review', 'completed', 'submitted')),
		assigned_freelancer_id UUID REFERENCES users(id),
		revision_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_projects_assignment CHECK ((status = 'open') = (assigned_freelancer_id IS NULL))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client_id ON projects (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_assigned_freelancer_id ON projects (assigned_freelancer_id) WHERE assigned_freelancer_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS bids (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		freelancer_id UUID NOT NULL REFERENCES users(id),
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		proposal TEXT NOT NULL CHECK (length(trim(proposal)) > 0),
		delivery_days INTEGER NOT NULL CHECK (delivery_days > 0),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'completed')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bids_project_freelancer ON bids (project_id, freelancer_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bids_project_accepted ON bids (project_id) WHERE status = 'accepted';`,
	`CREATE INDEX IF NOT EXISTS idx_bids_freelancer_id ON bids (freelancer_id);`,
	`CREATE TABLE IF NOT EXISTS deliverables (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		project_id UUID NOT NULL REFERENCES projects(id),
		freelancer_id UUID NOT NULL REFERENCES users(id),
		file_location TEXT NOT NULL,
		original_file_name VARCHAR(255) NOT NULL,
		description TEXT,
		size_bytes BIGINT NOT NULL DEFAULT 0,
		checksum VARCHAR(64) NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_deliverables_project_id ON deliverables (project_id);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		type VARCHAR(50) NOT NULL,
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		bid_id UUID REFERENCES bids(id) ON DELETE SET NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id) WHERE is_read = FALSE;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Migrate applies every schema statement. Statements are idempotent.
func Migrate(db *gorm.DB) error {
	return runMigrations(db)
}

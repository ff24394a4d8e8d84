package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/pricing-service/internal/pkg/config"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
)

type migrator struct {
	projectID  string
	instanceID string
	databaseID string
	dir        string
	log        *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	project, inst, db := cfg.SpannerIDs()

	m := &migrator{}
	flag.StringVar(&m.projectID, "project", project, "GCP project ID")
	flag.StringVar(&m.instanceID, "instance", inst, "Spanner instance ID")
	flag.StringVar(&m.databaseID, "database", db, "Spanner database ID")
	flag.StringVar(&m.dir, "migrations", "migrations", "Directory containing migration SQL files")
	flag.Parse()

	m.log, err = logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = m.log.Sync() }()

	ctx := context.Background()

	// Check if using emulator
	if emulatorHost := os.Getenv("SPANNER_EMULATOR_HOST"); emulatorHost != "" {
		m.log.Info("Using Spanner emulator", zap.String("host", emulatorHost))
	}

	if err := m.run(ctx); err != nil {
		m.log.Fatal("Migration failed", zap.Error(err))
	}
	m.log.Info("Migrations completed successfully")
}

func (m *migrator) run(ctx context.Context) error {
	if err := m.ensureInstance(ctx); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}
	if err := m.ensureDatabase(ctx); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := m.applyMigrations(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (m *migrator) instancePath() string {
	return fmt.Sprintf("projects/%s/instances/%s", m.projectID, m.instanceID)
}

func (m *migrator) databasePath() string {
	return fmt.Sprintf("%s/databases/%s", m.instancePath(), m.databaseID)
}

func (m *migrator) ensureInstance(ctx context.Context) error {
	m.log.Info("Ensuring instance exists", zap.String("instance", m.instanceID))

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: m.instancePath()})
	if err == nil {
		m.log.Info("Instance already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		m.log.Warn("Unexpected error checking instance", zap.Error(err))
		return nil
	}

	m.log.Info("Creating instance")
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + m.projectID,
		InstanceId: m.instanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", m.projectID),
			DisplayName: "Development Instance",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("failed to create instance: %w", err)
		}
		m.log.Info("Instance already exists")
		return nil
	}

	// The emulator may complete the operation before Wait is called.
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		m.log.Warn("Warning during instance creation", zap.Error(err))
	}
	m.log.Info("Instance created successfully")
	return nil
}

func (m *migrator) ensureDatabase(ctx context.Context) error {
	m.log.Info("Ensuring database exists", zap.String("database", m.databaseID))

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: m.databasePath()})
	if err == nil {
		m.log.Info("Database already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
			m.log.Warn("Proceeding with database (emulator mode)", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to check database: %w", err)
	}

	m.log.Info("Creating database")
	op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          m.instancePath(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", m.databaseID),
	})
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("failed to create database: %w", err)
		}
		m.log.Info("Database already exists")
		return nil
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	m.log.Info("Database created successfully")
	return nil
}

func (m *migrator) applyMigrations(ctx context.Context) error {
	m.log.Info("Applying migrations", zap.String("dir", m.dir))

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	files, err := filepath.Glob(filepath.Join(m.dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		m.log.Info("No migration files found")
		return nil
	}
	sort.Strings(files)

	current, err := adminClient.GetDatabaseDdl(ctx, &databasepb.GetDatabaseDdlRequest{Database: m.databasePath()})
	if err != nil {
		return fmt.Errorf("failed to read current schema: %w", err)
	}
	existing := existingObjects(current.GetStatements())

	for _, file := range files {
		migrationName := filepath.Base(file)

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		statements := pendingStatements(splitDDLStatements(string(content)), existing)
		if len(statements) == 0 {
			m.log.Info("Migration already applied", zap.String("file", migrationName))
			continue
		}

		m.log.Info("Applying migration", zap.String("file", migrationName), zap.Int("statements", len(statements)))
		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   m.databasePath(),
			Statements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", migrationName, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", migrationName, err)
		}

		for _, stmt := range statements {
			if name := createdObject(stmt); name != "" {
				existing[name] = true
			}
		}
		m.log.Info("Successfully applied migration", zap.String("file", migrationName))
	}
	return nil
}

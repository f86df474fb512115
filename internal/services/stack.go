package services

import (
	"fmt"

	"github.com/Ayash-Bera/aidline/internal/alchemyst"
	"github.com/Ayash-Bera/aidline/internal/assembler"
	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/config"
	"github.com/Ayash-Bera/aidline/internal/docindex"
	"github.com/Ayash-Bera/aidline/internal/expander"
	"github.com/Ayash-Bera/aidline/internal/guide"
	"github.com/Ayash-Bera/aidline/internal/literature"
	"github.com/Ayash-Bera/aidline/internal/relevance"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Stack is a fully wired pipeline plus the clients behind it, which callers use for
// health probes.
type Stack struct {
	Service    *EvidenceService
	Vector     *alchemyst.Client
	DocIndex   docindex.Index
	Literature *literature.Client
}

// BuildStack wires the three retrieval backends and the pipeline from configuration.
// db is required only for the postgres document index.
func BuildStack(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*Stack, error) {
	vectorClient := alchemyst.NewClient(cfg.VectorStore.BaseURL, cfg.VectorStore.APIKey, cfg.VectorStore.Timeout, logger)

	var index docindex.Index
	switch cfg.DocIndex.Provider {
	case config.ProviderChroma:
		index = docindex.NewChromaIndex(cfg.DocIndex.BaseURL, cfg.DocIndex.Timeout, logger)
	case config.ProviderPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres document index needs a database connection")
		}
		index = docindex.NewPostgresIndex(db, logger)
	default:
		return nil, fmt.Errorf("unknown document index provider %q", cfg.DocIndex.Provider)
	}

	litClient := literature.NewClient(literature.Config{
		BaseURL: cfg.Literature.BaseURL,
		APIKey:  cfg.Literature.APIKey,
		Email:   cfg.Literature.Email,
		Timeout: cfg.Literature.Timeout,
	}, logger)

	templates := guide.CuratedTemplates()
	if cfg.Guide.TemplatesPath != "" {
		overrides, err := guide.LoadTemplates(cfg.Guide.TemplatesPath)
		if err != nil {
			return nil, err
		}
		templates = guide.Merge(templates, overrides)
		logger.WithField("templates", len(overrides)).Info("Loaded curated guide overrides")
	}

	fanout := retrieval.NewFanOut([]retrieval.Source{
		{Backend: alchemyst.NewBackend(vectorClient, cfg.VectorStore.MinThreshold, logger), K: cfg.VectorStore.TopK, Timeout: cfg.VectorStore.Timeout},
		{Backend: docindex.NewBackend(index, cfg.DocIndex.Collection, logger), K: cfg.DocIndex.TopK, Timeout: cfg.DocIndex.Timeout},
		{Backend: literature.NewBackend(litClient), K: cfg.Literature.TopK, Timeout: cfg.Literature.Timeout},
	}, logger)

	service := NewEvidenceService(
		classifier.New(logger),
		expander.New(logger),
		fanout,
		relevance.NewFilter(cfg.Policies(), logger),
		guide.NewSynthesizer(templates, logger),
		assembler.New(cfg.Context.MaxChars, logger),
		logger,
	)

	if !vectorClient.Configured() {
		logger.Warn("Similarity store credentials missing, vector backend will return no results")
	}

	return &Stack{
		Service:    service,
		Vector:     vectorClient,
		DocIndex:   index,
		Literature: litClient,
	}, nil
}

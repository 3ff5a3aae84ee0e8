package main

import (
	"github.com/spec-kit/civic-report/internal/persistence"
	"github.com/spec-kit/civic-report/internal/repository"
	"github.com/spec-kit/civic-report/internal/repository/memory"
	"github.com/spec-kit/civic-report/internal/worker"
)

type repositories struct {
	accounts    repository.AccountRepository
	issues      repository.IssueRepository
	history     repository.IssueStatusRepository
	themes      repository.ThemeRepository
	revocations repository.RevocationStore
	// set only when the issue store cannot null out reporters itself
	reporterClearer worker.ReporterClearer
}

// openRepositories picks Postgres and Redis backed stores when configured and
// falls back to process-local ones otherwise.
func openRepositories(pg *persistence.Postgres, redis *persistence.Redis) repositories {
	var repos repositories

	if pg.Enabled() {
		pool := pg.PoolHandle()
		repos.accounts = repository.NewAccountRepository(pool)
		repos.issues = repository.NewIssueRepository(pool)
		repos.history = repository.NewIssueStatusRepository(pool)
		repos.themes = repository.NewThemeRepository(pool)
	} else {
		issues := memory.NewIssueRepository()
		repos.accounts = memory.NewAccountRepository()
		repos.issues = issues
		repos.history = issues.History()
		repos.themes = memory.NewThemeRepository()
		repos.reporterClearer = issues
	}

	if redis.Enabled() {
		repos.revocations = repository.NewRedisRevocationStore(redis.Client)
	} else {
		repos.revocations = memory.NewRevocationStore()
	}
	return repos
}

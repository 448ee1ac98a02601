package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/scope"
)

// Checker checks a single claim. *pipeline.Pipeline satisfies it.
type Checker interface {
	Check(ctx context.Context, claim string, sel scope.Selector) *model.Outcome
}

// Item is one claim to check, with its scope selector
type Item struct {
	Claim    string
	Selector scope.Selector
}

// CheckJob represents a claim check job
type CheckJob struct {
	Index   int
	Item    Item
	Checker Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	return &CheckResult{
		Index:   j.Index,
		Outcome: j.Checker.Check(ctx, j.Item.Claim, j.Item.Selector),
	}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Index   int
	Outcome *model.Outcome
}

// GetError returns an error when the check ended in a service error.
// Warnings and credential errors are outcomes, not job failures.
func (r *CheckResult) GetError() error {
	if r.Outcome != nil && r.Outcome.Status == model.StatusServiceError {
		return errors.New(r.Outcome.Verdict)
	}
	return nil
}

// BatchProcessor checks many claims concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessClaims checks items concurrently and returns outcomes in input
// order. Items not run because ctx ended get a service-error outcome.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, items []Item) []*model.Outcome {
	if len(items) == 0 {
		return []*model.Outcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		job := &CheckJob{
			Index:   i,
			Item:    item,
			Checker: b.checker,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	outcomes := make([]*model.Outcome, len(items))
	for _, r := range results {
		cr := r.(*CheckResult)
		outcomes[cr.Index] = cr.Outcome
	}

	for i, out := range outcomes {
		if out != nil {
			continue
		}
		reason := "batch cancelled"
		if err := ctx.Err(); err != nil {
			reason = fmt.Sprintf("batch cancelled: %v", err)
		}
		outcomes[i] = &model.Outcome{
			Claim:     items[i].Claim,
			Category:  string(items[i].Selector),
			Verdict:   "❌ Error: " + reason,
			Status:    model.StatusServiceError,
			CheckedAt: time.Now().UTC(),
		}
	}

	return outcomes
}

// ProcessFile reads claims from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, defaultSel scope.Selector) ([]*model.Outcome, error) {
	items, err := ReadClaimsFromFile(filePath, defaultSel)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, items), nil
}

// ReadClaimsFromFile reads claims from a file, one per line. A line may be
// prefixed with a selector and a tab ("medicine\tX cures cancer"); other
// lines use defaultSel. Blank lines, # comments and duplicates are skipped.
func ReadClaimsFromFile(filePath string, defaultSel scope.Selector) ([]Item, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []Item
	seen := make(map[Item]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item := Item{Claim: line, Selector: defaultSel}
		if sel, claim, ok := strings.Cut(line, "\t"); ok && scope.Known(scope.Selector(sel)) {
			item = Item{Claim: strings.TrimSpace(claim), Selector: scope.Normalize(sel)}
		}
		if item.Claim == "" {
			continue
		}

		// Deduplicate claims
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// maxItemLine bounds a single JSONL record; bodies may carry whole announcements.
const maxItemLine = 4 * 1024 * 1024

// Evaluator runs one item through the pipeline
type Evaluator interface {
	Evaluate(ctx context.Context, item model.RawItem) (*model.ItemOutcome, error)
}

// ItemJob evaluates a single item
type ItemJob struct {
	Index     int
	Item      model.RawItem
	Evaluator Evaluator
	Limiter   *Limiter
}

// Execute waits for the item's source slot and evaluates the item
func (j *ItemJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Item.Source); err != nil {
			return &ItemResult{Index: j.Index, Item: j.Item, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	outcome, err := j.Evaluator.Evaluate(ctx, j.Item)
	return &ItemResult{
		Index:   j.Index,
		Item:    j.Item,
		Outcome: outcome,
		Error:   err,
	}
}

// ItemResult represents the result of an item job
type ItemResult struct {
	Index   int
	Item    model.RawItem
	Outcome *model.ItemOutcome
	Error   error
}

// GetError returns the error from the item result
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many items concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. Evaluation is throttled
// per item source at requestsPerSecond; zero disables throttling.
func NewBatchProcessor(evaluator Evaluator, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessItems evaluates items concurrently and returns results in input order
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []model.RawItem) []*ItemResult {
	if len(items) == 0 {
		return []*ItemResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, item := range items {
		pool.Submit(&ItemJob{
			Index:     i,
			Item:      item,
			Evaluator: b.evaluator,
			Limiter:   b.limiter,
		})
	}

	results := pool.Wait()

	itemResults := make([]*ItemResult, 0, len(items))
	done := make(map[int]bool, len(results))
	for _, result := range results {
		r := result.(*ItemResult)
		done[r.Index] = true
		itemResults = append(itemResults, r)
	}

	// Jobs dropped by cancellation still get a result
	for i, item := range items {
		if !done[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			itemResults = append(itemResults, &ItemResult{Index: i, Item: item, Error: err})
		}
	}

	sort.Slice(itemResults, func(i, j int) bool {
		return itemResults[i].Index < itemResults[j].Index
	})
	return itemResults
}

// ProcessFile reads items from a file and evaluates them concurrently.
// Records that cannot be read are returned as rejections, not evaluated.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ItemResult, []model.RejectedItem, error) {
	items, rejected, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read items: %w", err)
	}

	return b.ProcessItems(ctx, items), rejected, nil
}

// ReadItemsFromFile reads items from a JSON array or JSONL file
func ReadItemsFromFile(filePath string) ([]model.RawItem, []model.RejectedItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadItems(file)
}

// ReadItems decodes items from either a JSON array or one JSON object per
// line. Blank lines and lines starting with # are skipped in JSONL input.
// Items are deduplicated on their key, keeping the first occurrence.
//
// A record that does not decode or fails validation is returned as a
// rejection and the remaining records are still read. The error is reserved
// for input that cannot be read at all.
func ReadItems(r io.Reader) ([]model.RawItem, []model.RejectedItem, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []model.RawItem{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var records []rawRecord
	if first == '[' {
		records, err = readArray(br)
	} else {
		records, err = readJSONL(br)
	}
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.RawItem, 0, len(records))
	var rejected []model.RejectedItem
	seen := make(map[string]bool)
	for _, rec := range records {
		var item model.RawItem
		if err := json.Unmarshal(rec.data, &item); err != nil {
			rejected = append(rejected, model.RejectedItem{Line: rec.line, Error: err.Error()})
			continue
		}
		if err := item.Validate(); err != nil {
			rejected = append(rejected, model.RejectedItem{
				Line:   rec.line,
				Source: item.Source,
				ItemID: item.ItemID,
				Error:  err.Error(),
			})
			continue
		}
		if seen[item.Key()] {
			continue
		}
		seen[item.Key()] = true
		items = append(items, item)
	}

	return items, rejected, nil
}

// rawRecord is one undecoded input record and its position
type rawRecord struct {
	line int
	data []byte
}

func readArray(r io.Reader) ([]rawRecord, error) {
	var elems []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elems); err != nil {
		return nil, fmt.Errorf("decode item array: %w", err)
	}

	records := make([]rawRecord, 0, len(elems))
	for i, e := range elems {
		records = append(records, rawRecord{line: i + 1, data: e})
	}
	return records, nil
}

func readJSONL(r io.Reader) ([]rawRecord, error) {
	var records []rawRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxItemLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		records = append(records, rawRecord{line: lineNo, data: []byte(line)})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}

	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

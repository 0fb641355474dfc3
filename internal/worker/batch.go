package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// Classifier classifies a single news item
type Classifier interface {
	Classify(ctx context.Context, title, content string) (*model.Prediction, error)
}

// NewsItem is one entry of a batch input file
type NewsItem struct {
	Line    int
	Title   string
	Content string
}

// PredictResult pairs an input item with its prediction or error
type PredictResult struct {
	Item       NewsItem
	Prediction *model.Prediction
	Error      error
}

// BatchPredictor classifies many items concurrently
type BatchPredictor struct {
	classifier  Classifier
	concurrency int
}

// NewBatchPredictor creates a batch predictor
func NewBatchPredictor(classifier Classifier, concurrency int) *BatchPredictor {
	return &BatchPredictor{
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// PredictItems classifies items; results follow input order.
// Per-item failures are carried in PredictResult.Error, never aborting the batch.
func (b *BatchPredictor) PredictItems(ctx context.Context, items []NewsItem) ([]PredictResult, error) {
	return Map(ctx, b.concurrency, items, func(ctx context.Context, item NewsItem) (PredictResult, error) {
		prediction, err := b.classifier.Classify(ctx, item.Title, item.Content)
		return PredictResult{Item: item, Prediction: prediction, Error: err}, nil
	})
}

// PredictFile reads items from a file and classifies them
func (b *BatchPredictor) PredictFile(ctx context.Context, filePath string) ([]PredictResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	return b.PredictItems(ctx, items)
}

// ReadItemsFromFile reads one item per line: "title<TAB>content", or just content.
// Blank lines and lines starting with '#' are skipped.
func ReadItemsFromFile(filePath string) ([]NewsItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []NewsItem

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		item := NewsItem{Line: line, Content: text}
		if title, content, found := strings.Cut(text, "\t"); found {
			item.Title = strings.TrimSpace(title)
			item.Content = strings.TrimSpace(content)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

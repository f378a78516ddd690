package core

import (
	"context"
	"sync"

	"github.com/webrecall/webrecall-go/pkg/model"
)

// CaptureResult carries the outcome of an asynchronous Capture.
type CaptureResult struct {
	Memory *model.Memory
	Error  error
}

// AsyncSearchResult carries the outcome of an asynchronous Search.
type AsyncSearchResult struct {
	Results []model.SearchResult
	Error   error
}

// AsyncAskResult carries the outcome of an asynchronous Ask.
type AsyncAskResult struct {
	Result *model.AskResult
	Error  error
}

// AsyncClient provides asynchronous WebRecall operations.
//
// It wraps the synchronous Client and executes operations in separate
// goroutines, returning buffered channels that receive the result when the
// operation completes. The client tracks all goroutines and provides Wait()
// to ensure outstanding operations finish before shutdown.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.CaptureAsync(ctx, page)
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous WebRecall client.
func NewAsyncClient(cfg *Config) (*AsyncClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{Client: client}, nil
}

// CaptureAsync saves a page asynchronously.
//
// The returned channel is buffered and closed after delivering exactly one
// result.
func (ac *AsyncClient) CaptureAsync(ctx context.Context, page model.Page, opts ...CaptureOption) <-chan *CaptureResult {
	resultChan := make(chan *CaptureResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		memory, err := ac.Capture(ctx, page, opts...)
		resultChan <- &CaptureResult{
			Memory: memory,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// SearchAsync searches memories asynchronously.
func (ac *AsyncClient) SearchAsync(ctx context.Context, query string, opts ...SearchOption) <-chan *AsyncSearchResult {
	resultChan := make(chan *AsyncSearchResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		results, err := ac.Search(ctx, query, opts...)
		resultChan <- &AsyncSearchResult{
			Results: results,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// AskAsync answers a question asynchronously.
func (ac *AsyncClient) AskAsync(ctx context.Context, question string) <-chan *AsyncAskResult {
	resultChan := make(chan *AsyncAskResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.Ask(ctx, question)
		resultChan <- &AsyncAskResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait blocks until all outstanding asynchronous operations complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close waits for outstanding operations and then closes the underlying
// client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}

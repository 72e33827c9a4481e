package dynamodb

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type fakeClient struct {
	mu sync.Mutex

	transactFn func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
	queryFn    func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	scanFn     func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	updateFn   func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	putFn      func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	deleteFn   func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)

	transacts []*dynamodb.TransactWriteItemsInput
	queries   []*dynamodb.QueryInput
	scans     []*dynamodb.ScanInput
	updates   []*dynamodb.UpdateItemInput
	puts      []*dynamodb.PutItemInput
	deletes   []*dynamodb.DeleteItemInput
}

func (f *fakeClient) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	f.transacts = append(f.transacts, in)
	f.mu.Unlock()
	if f.transactFn == nil {
		return &dynamodb.TransactWriteItemsOutput{}, nil
	}
	return f.transactFn(in)
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	copied := *in
	f.queries = append(f.queries, &copied)
	f.mu.Unlock()
	if f.queryFn == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryFn(in)
}

func (f *fakeClient) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	f.scans = append(f.scans, in)
	f.mu.Unlock()
	if f.scanFn == nil {
		return &dynamodb.ScanOutput{}, nil
	}
	return f.scanFn(in)
}

func (f *fakeClient) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	f.updates = append(f.updates, in)
	f.mu.Unlock()
	if f.updateFn == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return f.updateFn(in)
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	f.puts = append(f.puts, in)
	f.mu.Unlock()
	if f.putFn == nil {
		return &dynamodb.PutItemOutput{}, nil
	}
	return f.putFn(in)
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	f.deletes = append(f.deletes, in)
	f.mu.Unlock()
	if f.deleteFn == nil {
		return &dynamodb.DeleteItemOutput{}, nil
	}
	return f.deleteFn(in)
}

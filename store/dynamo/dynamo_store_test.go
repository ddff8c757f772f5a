package dynamo

import (
	"context"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblac/sport-tracker-sub006/store"
)

// fakeClient implements Client with an in-memory table.
type fakeClient struct {
	items    map[string][]byte
	pingErr  error
	scanPage int32 // items per scan page; 0 = all
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string][]byte{}}
}

func (f *fakeClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key := params.Key[attrKey].(*types.AttributeValueMemberS).Value
	data, ok := f.items[key]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		attrKey:     &types.AttributeValueMemberS{Value: key},
		attrPayload: &types.AttributeValueMemberB{Value: data},
	}}, nil
}

func (f *fakeClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := params.Item[attrKey].(*types.AttributeValueMemberS).Value
	f.items[key] = params.Item[attrPayload].(*types.AttributeValueMemberB).Value
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	key := params.Key[attrKey].(*types.AttributeValueMemberS).Value
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	// Stable order so the pagination marker means the same thing on
	// every call.
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		marker := params.ExclusiveStartKey[attrKey].(*types.AttributeValueMemberS).Value
		for i, k := range keys {
			if k == marker {
				start = i + 1
				break
			}
		}
	}

	end := len(keys)
	if f.scanPage > 0 && start+int(f.scanPage) < end {
		end = start + int(f.scanPage)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: k},
		})
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

func (f *fakeClient) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.pingErr != nil {
		return nil, f.pingErr
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func TestStore_BasicOps(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeClient(), "cache")

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_KeysPaginates(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.scanPage = 2
	s := NewStore(client, "cache")

	want := []string{"a", "b", "c", "d", "e"}
	for _, k := range want {
		require.NoError(t, s.Put(ctx, k, []byte(k)))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, keys)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeClient(), "cache")

	require.NoError(t, s.Put(ctx, "a", []byte("alpha")))
	require.NoError(t, s.Put(ctx, "b", []byte("beta")))
	require.NoError(t, s.Clear(ctx))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

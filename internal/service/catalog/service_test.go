package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/mocks"
	"github.com/phrazzld/bookshelf-api/internal/service/catalog"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const validPayload = `{"title":"Test Book","author":"Author","publishedDate":"2020-01-01","isbn":"1234567890123"}`

func seedBook(title, isbn string) domain.BookInput {
	return domain.BookInput{
		Title:         title,
		Author:        "Seed Author",
		PublishedDate: domain.NewDate(1999, time.December, 31),
		ISBN:          isbn,
	}
}

func newService(t *testing.T, books store.BookStore) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(books, nil, nil)
	require.NoError(t, err)
	return svc
}

func requireKind(t *testing.T, err error, kind domain.Kind) *domain.Error {
	t.Helper()
	var de *domain.Error
	require.True(t, errors.As(err, &de), "expected *domain.Error, got %v", err)
	require.Equal(t, kind, de.Kind)
	return de
}

func TestService_CreateThenList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	books := mocks.NewMockBookStore(seedBook("Existing", "9780000000001"))
	svc := newService(t, books)

	id, err := svc.Create(ctx, []byte(validPayload))
	require.NoError(t, err)
	assert.Positive(t, id)

	list, err := svc.List(ctx)
	require.NoError(t, err)

	matches := 0
	for _, b := range list {
		if b.ISBN == "1234567890123" {
			matches++
			assert.Equal(t, id, b.ID)
			assert.Equal(t, "Test Book", b.Title)
		}
	}
	assert.Equal(t, 1, matches)
}

func TestService_CreateDuplicateISBN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	books := mocks.NewMockBookStore()
	svc := newService(t, books)

	_, err := svc.Create(ctx, []byte(validPayload))
	require.NoError(t, err)

	_, err = svc.Create(ctx, []byte(validPayload))
	de := requireKind(t, err, domain.KindConflict)
	assert.Equal(t, "The book with ISBN 1234567890123 already exists in the system.", de.Message)
	assert.Contains(t, de.Message, "already exists")
	assert.ErrorIs(t, err, store.ErrISBNExists)
	assert.Equal(t, 1, books.Len())
}

func TestService_CreateRaceFallsBackToConstraint(t *testing.T) {
	t.Parallel()
	books := mocks.NewMockBookStore(seedBook("Existing", "1234567890123"))
	// The existence check misses the row, as it would for a concurrent insert.
	books.ExistsByISBNFn = func(ctx context.Context, isbn string) (bool, error) { return false, nil }
	svc := newService(t, books)

	_, err := svc.Create(context.Background(), []byte(validPayload))
	requireKind(t, err, domain.KindConflict)
	assert.Equal(t, 1, books.Len())
}

func TestService_ConcurrentCreatesSameISBN(t *testing.T) {
	t.Parallel()
	books := mocks.NewMockBookStore()
	svc := newService(t, books)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), []byte(validPayload))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case domain.KindOf(err) == domain.KindConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, books.Len())
}

func TestService_InvalidPayloadNeverTouchesStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	books := mocks.NewMockBookStore(seedBook("Existing", "9780000000001"))
	svc := newService(t, books)

	payloads := []string{
		`{"id":1,"title":"t","author":"a","publishedDate":"2020-01-01","isbn":"1234567890123"}`,
		`{"title":"t","author":"a","publishedDate":"2020-01-01","isbn":"1234567890123","publisher":"X"}`,
		`{"title":"","author":"a","publishedDate":"2020-01-01","isbn":"1234567890123"}`,
		`not json`,
	}
	for _, p := range payloads {
		_, err := svc.Create(ctx, []byte(p))
		requireKind(t, err, domain.KindBadRequest)
		_, err = svc.Update(ctx, 1, []byte(p))
		requireKind(t, err, domain.KindBadRequest)
	}

	assert.Zero(t, books.CreateCalls)
	assert.Zero(t, books.UpdateCalls)
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		id       int64
		payload  string
		wantKind domain.Kind
		wantMsg  string
		wantErr  bool
	}{
		{
			name:    "replaces all fields",
			id:      1,
			payload: `{"title":"New","author":"New Author","publishedDate":"2001-02-03","isbn":"5555555555555"}`,
		},
		{
			name:    "keeps own isbn",
			id:      1,
			payload: `{"title":"New","author":"New Author","publishedDate":"2001-02-03","isbn":"1111111111111"}`,
		},
		{
			name:     "isbn taken by another book",
			id:       1,
			payload:  `{"title":"New","author":"New Author","publishedDate":"2001-02-03","isbn":"2222222222222"}`,
			wantErr:  true,
			wantKind: domain.KindConflict,
			wantMsg:  "The book with ISBN 2222222222222 already exists in the system.",
		},
		{
			name:     "unknown id",
			id:       99,
			payload:  validPayload,
			wantErr:  true,
			wantKind: domain.KindNotFound,
			wantMsg:  "Book not found with id 99",
		},
		{
			name:     "non-positive id",
			id:       0,
			payload:  validPayload,
			wantErr:  true,
			wantKind: domain.KindBadRequest,
			wantMsg:  catalog.MsgInvalidID,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			books := mocks.NewMockBookStore(seedBook("One", "1111111111111"), seedBook("Two", "2222222222222"))
			svc := newService(t, books)

			id, err := svc.Update(ctx, tc.id, []byte(tc.payload))

			if tc.wantErr {
				de := requireKind(t, err, tc.wantKind)
				assert.Equal(t, tc.wantMsg, de.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, id)

			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, tc.id, list[0].ID, "id is unchanged by update")
			assert.Equal(t, "New", list[0].Title)
			assert.Equal(t, "New Author", list[0].Author)
			assert.Equal(t, "2001-02-03", list[0].PublishedDate.String())
		})
	}
}

func TestService_DeleteTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newService(t, mocks.NewMockBookStore(seedBook("One", "1111111111111")))

	id, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = svc.Delete(ctx, 1)
	de := requireKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Book not found with id 1", de.Message)

	_, err = svc.Delete(ctx, -3)
	requireKind(t, err, domain.KindBadRequest)
}

func TestService_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("connection reset")
	books := mocks.NewMockBookStore(seedBook("One", "1111111111111"))
	books.ListError = boom
	books.CreateError = boom
	books.GetError = boom
	svc := newService(t, books)

	_, err := svc.List(ctx)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.ErrorIs(t, err, boom)

	_, err = svc.Create(ctx, []byte(validPayload))
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = svc.Delete(ctx, 1)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, 1, books.Len())
}

func TestService_RecordsOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc, err := catalog.NewService(mocks.NewMockBookStore(), mp.Meter("test"), nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, []byte(validPayload))
	require.NoError(t, err)
	_, err = svc.Create(ctx, []byte(validPayload))
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "bookshelf.catalog.operations" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), counts["ok"])
	assert.Equal(t, int64(1), counts["conflict"])
}

func TestNewService_RequiresStore(t *testing.T) {
	t.Parallel()
	_, err := catalog.NewService(nil, nil, nil)
	assert.Error(t, err)
}

package export

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/knot-cloud/storage-go/network"
	"github.com/knot-cloud/storage-go/storage"
)

// pagedSource serves a fixed number of records honouring skip and take
type pagedSource struct {
	total   int
	queries []network.Query
	failAt  int // page index that fails, -1 for none
	pageLen int // when set the page length ignores take
}

func (p *pagedSource) list(_ context.Context, query network.Query) ([]storage.Data, error) {
	p.queries = append(p.queries, query)
	if p.failAt >= 0 && len(p.queries)-1 == p.failAt {
		return nil, &network.Error{Message: "unavailable", Code: 503}
	}

	skip := query["skip"].(int)
	take := query["take"].(int)
	if p.pageLen > 0 {
		take = p.pageLen
	}

	var page []storage.Data
	for i := skip; i < skip+take && i < p.total; i++ {
		page = append(page, storage.Data{From: fmt.Sprintf("device-%d", i)})
	}
	return page, nil
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		query     network.Query
		opts      Options
		wantCount int
		wantPages int
		wantFirst string
	}{
		{
			name:      "exact multiple of page size",
			total:     6,
			opts:      Options{PageSize: 3},
			wantCount: 6,
			wantPages: 3, // the last page is empty
			wantFirst: "device-0",
		},
		{
			name:      "short last page",
			total:     7,
			opts:      Options{PageSize: 3},
			wantCount: 7,
			wantPages: 3,
			wantFirst: "device-0",
		},
		{
			name:      "limit",
			total:     100,
			opts:      Options{PageSize: 3, Limit: 5},
			wantCount: 5,
			wantPages: 2,
			wantFirst: "device-0",
		},
		{
			name:      "starting offset",
			total:     10,
			query:     network.Query{"skip": 8, "orderBy": "timestamp"},
			opts:      Options{PageSize: 5},
			wantCount: 2,
			wantPages: 1,
			wantFirst: "device-8",
		},
		{
			name:      "empty source",
			total:     0,
			opts:      Options{},
			wantCount: 0,
			wantPages: 1,
		},
		{
			name:      "paced",
			total:     4,
			opts:      Options{PageSize: 2, RequestsPerSecond: 1000},
			wantCount: 4,
			wantPages: 3,
			wantFirst: "device-0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{total: tt.total, failAt: -1}

			var got []storage.Data
			n, err := Run(context.Background(), src.list, tt.query, tt.opts, func(d storage.Data) error {
				got = append(got, d)
				return nil
			})
			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			if n != tt.wantCount || len(got) != tt.wantCount {
				t.Errorf("Run() emitted %d (returned %d), want %d", len(got), n, tt.wantCount)
			}
			if len(src.queries) != tt.wantPages {
				t.Errorf("Run() requested %d pages, want %d", len(src.queries), tt.wantPages)
			}
			if tt.wantFirst != "" && len(got) > 0 && got[0].From != tt.wantFirst {
				t.Errorf("first record = %s, want %s", got[0].From, tt.wantFirst)
			}
		})
	}
}

func TestRunLimitWhenTakeIsIgnored(t *testing.T) {
	src := &pagedSource{total: 100, failAt: -1, pageLen: 10}

	var got []storage.Data
	n, err := Run(context.Background(), src.list, nil, Options{PageSize: 3, Limit: 5}, func(d storage.Data) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if n != 5 || len(got) != 5 {
		t.Errorf("Run() emitted %d (returned %d), want 5", len(got), n)
	}
	if len(src.queries) != 1 {
		t.Errorf("Run() requested %d pages, want 1", len(src.queries))
	}
}

func TestRunKeepsCallerQuery(t *testing.T) {
	src := &pagedSource{total: 3, failAt: -1}
	query := network.Query{"orderBy": "timestamp"}

	_, err := Run(context.Background(), src.list, query, Options{PageSize: 2}, func(storage.Data) error { return nil })
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	for i, q := range src.queries {
		if q["orderBy"] != "timestamp" {
			t.Errorf("page %d lost the caller query: %v", i, q)
		}
	}
	if _, ok := query["skip"]; ok {
		t.Error("Run() modified the caller query")
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("list error is returned unchanged", func(t *testing.T) {
		src := &pagedSource{total: 10, failAt: 1}
		n, err := Run(context.Background(), src.list, nil, Options{PageSize: 2}, func(storage.Data) error { return nil })

		var storageErr *network.Error
		if !errors.As(err, &storageErr) || storageErr.Code != 503 {
			t.Fatalf("Run() error = %v, want storage error 503", err)
		}
		if n != 2 {
			t.Errorf("Run() emitted %d before failing, want 2", n)
		}
	})

	t.Run("emit error stops the export", func(t *testing.T) {
		src := &pagedSource{total: 10, failAt: -1}
		stop := errors.New("stop")
		_, err := Run(context.Background(), src.list, nil, Options{PageSize: 5}, func(storage.Data) error { return stop })
		if !errors.Is(err, stop) {
			t.Errorf("Run() error = %v, want %v", err, stop)
		}
	})

	t.Run("invalid skip", func(t *testing.T) {
		src := &pagedSource{total: 10, failAt: -1}
		_, err := Run(context.Background(), src.list, network.Query{"skip": "ten"}, Options{}, func(storage.Data) error { return nil })
		if err == nil {
			t.Error("Run() expected an error for a non integer skip")
		}
		if len(src.queries) != 0 {
			t.Errorf("Run() sent %d requests, want none", len(src.queries))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		src := &pagedSource{total: 10, failAt: -1}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, src.list, nil, Options{RequestsPerSecond: 1}, func(storage.Data) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

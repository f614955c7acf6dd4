package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/httpclient"
	"github.com/movelink/movekit/metric"
)

// capturedRequest records what the adapter actually sent
type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// adapterFixture wires a provider to a scripted backend and records every
// request it receives
type adapterFixture struct {
	provider *Provider
	server   *httptest.Server
	requests []capturedRequest
	handler  http.HandlerFunc
}

func newFixture(t *testing.T, handler http.HandlerFunc) *adapterFixture {
	t.Helper()
	f := &adapterFixture{handler: handler}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &captured.Body)
		}
		f.requests = append(f.requests, captured)
		f.handler(w, r)
	}))
	t.Cleanup(f.server.Close)

	client, err := httpclient.NewClient(f.server.URL)
	require.NoError(t, err)
	parsed, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	client.Jar().SetCookies(parsed, []*http.Cookie{
		{Name: httpclient.DefaultCSRFCookieName, Value: "test-token"},
	})

	f.provider = New(client)
	return f
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGetList_BuildsCanonicalQuery(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "moves 0-1/57")
		respondJSON(w, http.StatusOK, `[{"id":"m1"},{"id":"m2"}]`)
	})

	list, err := f.provider.GetList(context.Background(), "moves",
		Sort{Field: "requestedPickupDate", Order: SortAscending},
		Pagination{Page: 3, PerPage: 20},
		map[string]any{"status": "SUBMITTED"},
	)
	require.NoError(t, err)

	req := f.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/moves", req.Path)
	assert.Equal(t, "requested_pickup_date", req.Query.Get("sort"))
	assert.Equal(t, "true", req.Query.Get("order"))
	assert.Equal(t, "3", req.Query.Get("page"))
	assert.Equal(t, "20", req.Query.Get("perPage"))
	assert.JSONEq(t, `{"status":"SUBMITTED"}`, req.Query.Get("filter"))

	assert.Equal(t, 57, list.Total)
	require.Len(t, list.Records, 2)
	assert.Equal(t, "m1", list.Records[0]["id"])
}

func TestGetList_DescendingOrder(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "moves 0-0/1")
		respondJSON(w, http.StatusOK, `[{"id":"m1"}]`)
	})

	_, err := f.provider.GetList(context.Background(), "moves",
		Sort{Field: "createdAt", Order: SortDescending}, Pagination{Page: 1, PerPage: 10}, nil)
	require.NoError(t, err)

	assert.Equal(t, "false", f.requests[0].Query.Get("order"))
}

func TestGetList_MissingContentRangeIsFatal(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `[{"id":"m1"}]`)
	})

	_, err := f.provider.GetList(context.Background(), "moves",
		Sort{Field: "locator", Order: SortAscending}, Pagination{Page: 1, PerPage: 10}, nil)

	require.Error(t, err)
	assert.True(t, errors.IsContract(err), "missing Content-Range must be a contract error")
	require.ErrorIs(t, err, errors.ErrMissingContentRange)
}

func TestGetOne(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{"id":"m1","locator":"ABC123"}`)
	})

	record, err := f.provider.GetOne(context.Background(), "moves", "m1")
	require.NoError(t, err)

	assert.Equal(t, "/moves/m1", f.requests[0].Path)
	assert.Equal(t, "ABC123", record["locator"])
}

func TestGetMany_OfficesIgnoresIDs(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `[{"id":"o1"},{"id":"o2"}]`)
	})

	records, err := f.provider.GetMany(context.Background(), "offices", []any{"o1", "o2", "o3"})
	require.NoError(t, err)

	req := f.requests[0]
	assert.Equal(t, "/offices", req.Path)
	assert.Equal(t, "1", req.Query.Get("page"))
	assert.Equal(t, "10000", req.Query.Get("perPage"))
	assert.Empty(t, req.Query.Get("filter"))
	assert.Len(t, records, 2)
}

func TestGetMany_OnlyFirstIDHonored(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `[{"id":"u1"}]`)
	})

	_, err := f.provider.GetMany(context.Background(), "office_users", []any{"u1", "u2", "u3"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"u1"}`, f.requests[0].Query.Get("filter"))
}

func TestGetMany_NoIDs(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `[]`)
	})

	_, err := f.provider.GetMany(context.Background(), "office_users", nil)
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
	assert.Empty(t, f.requests, "no request should be issued")
}

func TestGetManyReference_AugmentsFilterWithTarget(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "shipments 0-0/1")
		respondJSON(w, http.StatusOK, `[{"id":"s1"}]`)
	})

	list, err := f.provider.GetManyReference(context.Background(), "mto_shipments", "moveTaskOrderID", "m1",
		Sort{Field: "createdAt", Order: SortAscending}, Pagination{Page: 1, PerPage: 100},
		map[string]any{"status": "APPROVED"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"APPROVED","moveTaskOrderID":"m1"}`, f.requests[0].Query.Get("filter"))
	assert.Equal(t, 1, list.Total)
}

func TestCreate_MergesServerIDOnly(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		// Server echoes mutated fields; only the id may be trusted
		respondJSON(w, http.StatusCreated, `{"id":"sm9","affiliation":"NAVY","createdAt":"2020-01-01"}`)
	})

	submitted := Record{"affiliation": "ARMY", "edipi": "1234567890"}
	record, err := f.provider.Create(context.Background(), "service_members", submitted)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, f.requests[0].Method)
	assert.Equal(t, "/service_members", f.requests[0].Path)

	assert.Equal(t, "sm9", record["id"])
	assert.Equal(t, "ARMY", record["affiliation"], "server-echoed fields must not override submitted data")
	assert.NotContains(t, record, "createdAt")
}

func TestCreate_MissingServerID(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusCreated, `{"affiliation":"ARMY"}`)
	})

	_, err := f.provider.Create(context.Background(), "service_members", Record{"affiliation": "ARMY"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingID)
}

func TestUpdate_SendsDiffWithIfMatch(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{"id":"u1","lastName":"Starman","eTag":"v2"}`)
	})

	previous := Record{"id": "u1", "firstName": "Leo", "lastName": "Spaceman", "eTag": "v1"}
	data := Record{"id": "u1", "firstName": "Leo", "lastName": "Starman", "eTag": "v1"}

	record, err := f.provider.Update(context.Background(), "office_users", "u1", data, previous)
	require.NoError(t, err)

	req := f.requests[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/office_users/u1", req.Path)
	assert.Equal(t, "v1", req.Header.Get("If-Match"))
	assert.Equal(t, map[string]any{"lastName": "Starman"}, req.Body)

	assert.Equal(t, "v2", record["eTag"])
}

func TestUpdate_MissingETag(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{}`)
	})

	_, err := f.provider.Update(context.Background(), "office_users", "u1",
		Record{"lastName": "Starman"}, Record{"lastName": "Spaceman"})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingETag)
	assert.Empty(t, f.requests)
}

func TestUpdate_PreconditionFailurePropagates(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusPreconditionFailed, `{"detail":"etag is stale"}`)
	})

	_, err := f.provider.Update(context.Background(), "office_users", "u1",
		Record{"lastName": "Starman", "eTag": "v1"}, Record{"lastName": "Spaceman", "eTag": "v1"})

	require.Error(t, err)
	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusPreconditionFailed, te.Status)
}

func TestUpdateMany_PerItemErrorIsolation(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/office_users/bad" {
			respondJSON(w, http.StatusConflict, `{"detail":"locked"}`)
			return
		}
		respondJSON(w, http.StatusOK, `{}`)
	})

	bulk, err := f.provider.UpdateMany(context.Background(), "office_users",
		[]any{"u1", "bad", "u3"}, Record{"active": false, "eTag": "v1"})
	require.NoError(t, err)

	assert.Equal(t, []any{"u1", "u3"}, bulk.IDs)
	require.Len(t, bulk.Errors, 1)
	assert.Error(t, bulk.Errors["bad"])
	assert.Error(t, bulk.Err())
	assert.Len(t, f.requests, 3, "every id gets its own request")
}

func TestDelete(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	record, err := f.provider.Delete(context.Background(), "admin_users", "a1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, f.requests[0].Method)
	assert.Equal(t, "/admin_users/a1", f.requests[0].Path)
	assert.Equal(t, "a1", record["id"])
}

func TestDeleteMany_PerItemErrorIsolation(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin_users/gone" {
			respondJSON(w, http.StatusNotFound, `{"detail":"not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	bulk, err := f.provider.DeleteMany(context.Background(), "admin_users", []any{"a1", "gone"})
	require.NoError(t, err)

	assert.Equal(t, []any{"a1"}, bulk.IDs)
	assert.Error(t, bulk.Errors["gone"])
}

func TestDo_UnsupportedOperation(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := f.provider.Do(context.Background(), Request{Type: OperationType(42), Resource: "moves"})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedOperation)
	assert.True(t, errors.IsContract(err))
	assert.Empty(t, f.requests)
}

func TestDo_DispatchesGetList(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "moves 0-0/12")
		respondJSON(w, http.StatusOK, `[{"id":"m1"}]`)
	})

	result, err := f.provider.Do(context.Background(), Request{
		Type:       OperationGetList,
		Resource:   "moves",
		Sort:       Sort{Field: "locator", Order: SortAscending},
		Pagination: Pagination{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, result.Total)
	require.Len(t, result.Records, 1)
}

func TestGetList_PreservesBasePathPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if strings.HasSuffix(r.URL.Path, "/moves") {
			w.Header().Set("Content-Range", "moves 0-0/1")
			respondJSON(w, http.StatusOK, `[{"id":"m1"}]`)
			return
		}
		respondJSON(w, http.StatusOK, `{"id":"m1"}`)
	}))
	defer server.Close()

	// The adapter must stay beneath a mounted API prefix such as /admin/v1
	client, err := httpclient.NewClient(server.URL + "/admin/v1")
	require.NoError(t, err)
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	client.Jar().SetCookies(parsed, []*http.Cookie{
		{Name: httpclient.DefaultCSRFCookieName, Value: "test-token"},
	})

	p := New(client)
	_, err = p.GetList(context.Background(), "moves",
		Sort{Field: "locator", Order: SortAscending},
		Pagination{Page: 1, PerPage: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/v1/moves", gotPath)

	_, err = p.GetOne(context.Background(), "moves", "m1")
	require.NoError(t, err)
	assert.Equal(t, "/admin/v1/moves/m1", gotPath)
}

func TestInstrument_FailedRequestCountsErrorOnce(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	f.provider.metrics = registry.CoreMetrics()

	_, err := f.provider.GetList(context.Background(), "moves",
		Sort{Field: "locator", Order: SortAscending},
		Pagination{Page: 1, PerPage: 10}, nil)
	require.Error(t, err)

	core := registry.CoreMetrics()
	assert.Equal(t, 0.0, testutil.ToFloat64(core.RequestsTotal.WithLabelValues("moves", "getList", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.RequestsTotal.WithLabelValues("moves", "getList", "error")))
}

func TestInstrument_SuccessCountsOKOnce(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Range", "moves 0-0/1")
		respondJSON(w, http.StatusOK, `[{"id":"m1"}]`)
	})
	f.provider.metrics = registry.CoreMetrics()

	_, err := f.provider.GetList(context.Background(), "moves",
		Sort{Field: "locator", Order: SortAscending},
		Pagination{Page: 1, PerPage: 10}, nil)
	require.NoError(t, err)

	core := registry.CoreMetrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(core.RequestsTotal.WithLabelValues("moves", "getList", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(core.RequestsTotal.WithLabelValues("moves", "getList", "error")))
}

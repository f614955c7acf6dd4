// Package provider implements the REST data-provider adapter: a pure
// translation layer between abstract list/get/create/update/delete
// operations and the concrete HTTP requests the move-management backend
// understands, and between its responses and abstract results.
//
// The adapter reproduces the backend's request contract exactly: snake_case
// sort fields, boolean order literals, JSON-encoded filter maps, the
// Content-Range total on paginated reads, and If-Match optimistic
// concurrency on updates. It never catches and hides errors; transport and
// contract failures propagate to the calling orchestrator.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/httpclient"
	"github.com/movelink/movekit/metric"
)

// Provider translates abstract operations into API calls
type Provider struct {
	client  *httpclient.Client
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option is a functional option for configuring the Provider
type Option func(*Provider)

// WithLogger sets a structured logger for the provider
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics enables request metrics using the provided registry
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(p *Provider) {
		if registry != nil {
			p.metrics = registry.CoreMetrics()
		}
	}
}

// New creates a data provider over the given API client
func New(client *httpclient.Client, opts ...Option) *Provider {
	p := &Provider{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do executes a tagged operation request. An unrecognized operation type
// is a contract violation, distinguishable from transport failures.
func (p *Provider) Do(ctx context.Context, req Request) (*Result, error) {
	switch req.Type {
	case OperationGetList:
		list, err := p.GetList(ctx, req.Resource, req.Sort, req.Pagination, req.Filter)
		if err != nil {
			return nil, err
		}
		return &Result{Records: list.Records, Total: list.Total}, nil
	case OperationGetOne:
		record, err := p.GetOne(ctx, req.Resource, req.ID)
		if err != nil {
			return nil, err
		}
		return &Result{Record: record}, nil
	case OperationGetMany:
		records, err := p.GetMany(ctx, req.Resource, req.IDs)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records}, nil
	case OperationGetManyReference:
		list, err := p.GetManyReference(ctx, req.Resource, req.Target, req.TargetID, req.Sort, req.Pagination, req.Filter)
		if err != nil {
			return nil, err
		}
		return &Result{Records: list.Records, Total: list.Total}, nil
	case OperationCreate:
		record, err := p.Create(ctx, req.Resource, req.Data)
		if err != nil {
			return nil, err
		}
		return &Result{Record: record}, nil
	case OperationUpdate:
		record, err := p.Update(ctx, req.Resource, req.ID, req.Data, req.PreviousData)
		if err != nil {
			return nil, err
		}
		return &Result{Record: record}, nil
	case OperationUpdateMany:
		bulk, err := p.UpdateMany(ctx, req.Resource, req.IDs, req.Data)
		if err != nil {
			return nil, err
		}
		return &Result{Records: bulkRecords(bulk)}, nil
	case OperationDelete:
		record, err := p.Delete(ctx, req.Resource, req.ID)
		if err != nil {
			return nil, err
		}
		return &Result{Record: record}, nil
	case OperationDeleteMany:
		bulk, err := p.DeleteMany(ctx, req.Resource, req.IDs)
		if err != nil {
			return nil, err
		}
		return &Result{Records: bulkRecords(bulk)}, nil
	default:
		return nil, errors.WrapContract(errors.ErrUnsupportedOperation,
			"Provider", "Do", fmt.Sprintf("dispatch operation %d", req.Type))
	}
}

// ListResult is the outcome of a paginated read
type ListResult struct {
	Records []Record
	Total   int
}

// GetList fetches one page of a resource collection
func (p *Provider) GetList(ctx context.Context, resource string, sort Sort, pagination Pagination, filter map[string]any) (result *ListResult, err error) {
	defer p.instrument(resource, OperationGetList, time.Now(), &err)

	query, err := listQuery(sort, pagination, filter)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(ctx, http.MethodGet, fmt.Sprintf("%s?%s", resource, query), nil, nil)
	if err != nil {
		return nil, err
	}

	return parseList(OperationGetList, resp)
}

// GetOne fetches a single record by id
func (p *Provider) GetOne(ctx context.Context, resource string, id any) (record Record, err error) {
	defer p.instrument(resource, OperationGetOne, time.Now(), &err)

	resp, err := p.client.Do(ctx, http.MethodGet, resourcePath(resource, id), nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeRecord(resp.JSON, "GetOne")
}

// GetMany fetches a set of records by id. The offices resource is fetched
// whole (ids ignored) since the collection is small and cacheable. For any
// other resource only the first id is honored, a preserved limitation of
// the consumed contract, not a bug to fix silently.
func (p *Provider) GetMany(ctx context.Context, resource string, ids []any) (records []Record, err error) {
	defer p.instrument(resource, OperationGetMany, time.Now(), &err)

	var path string
	if resource == "offices" {
		path = fmt.Sprintf("%s?page=1&perPage=%d", resource, officesPerPage)
	} else {
		if len(ids) == 0 {
			return nil, errors.WrapContract(
				fmt.Errorf("getMany on %q requires at least one id", resource),
				"Provider", "GetMany", "validate ids")
		}
		encodedFilter, err := encodeFilter(map[string]any{"id": ids[0]})
		if err != nil {
			return nil, err
		}
		q := url.Values{}
		q.Set("filter", encodedFilter)
		path = fmt.Sprintf("%s?%s", resource, q.Encode())
	}

	resp, err := p.client.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeRecords(resp.JSON, "GetMany")
}

// GetManyReference fetches the page of records referencing a parent: a
// list request whose filter is augmented with {target: id}
func (p *Provider) GetManyReference(ctx context.Context, resource, target string, id any, sort Sort, pagination Pagination, filter map[string]any) (result *ListResult, err error) {
	defer p.instrument(resource, OperationGetManyReference, time.Now(), &err)

	augmented := make(map[string]any, len(filter)+1)
	for key, value := range filter {
		augmented[key] = value
	}
	augmented[target] = id

	query, err := listQuery(sort, pagination, augmented)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(ctx, http.MethodGet, fmt.Sprintf("%s?%s", resource, query), nil, nil)
	if err != nil {
		return nil, err
	}

	return parseList(OperationGetManyReference, resp)
}

// Create posts a new record. The server is trusted only for the id: the
// result is the submitted data with the returned id merged in, so
// client-side computed defaults survive whatever the server echoes back.
func (p *Provider) Create(ctx context.Context, resource string, data Record) (record Record, err error) {
	defer p.instrument(resource, OperationCreate, time.Now(), &err)

	resp, err := p.client.Do(ctx, http.MethodPost, resource, data, nil)
	if err != nil {
		return nil, err
	}

	echoed, err := decodeRecord(resp.JSON, "Create")
	if err != nil {
		return nil, err
	}
	id, ok := echoed.ID()
	if !ok {
		return nil, errors.WrapContract(errors.ErrMissingID, "Provider", "Create", "read created id")
	}

	result := data.Clone()
	if result == nil {
		result = make(Record, 1)
	}
	result["id"] = id
	return result, nil
}

// Update patches a record under optimistic concurrency: If-Match carries
// the submitted eTag and the body is the previousData-to-data diff.
func (p *Provider) Update(ctx context.Context, resource string, id any, data, previousData Record) (record Record, err error) {
	defer p.instrument(resource, OperationUpdate, time.Now(), &err)

	etag, ok := data.ETag()
	if !ok {
		return nil, errors.WrapContract(errors.ErrMissingETag, "Provider", "Update", "read eTag")
	}

	header := make(http.Header)
	header.Set("If-Match", etag)

	resp, err := p.client.Do(ctx, http.MethodPatch, resourcePath(resource, id), updateBody(previousData, data), header)
	if err != nil {
		return nil, err
	}

	return decodeRecord(resp.JSON, "Update")
}

// UpdateMany patches each id individually; there is no bulk endpoint.
// Failures are isolated per item and aggregated into the result.
func (p *Provider) UpdateMany(ctx context.Context, resource string, ids []any, data Record) (result *BulkResult, err error) {
	defer p.instrument(resource, OperationUpdateMany, time.Now(), &err)

	header := make(http.Header)
	if etag, ok := data.ETag(); ok {
		header.Set("If-Match", etag)
	}

	result = &BulkResult{Errors: make(map[any]error)}
	for _, id := range ids {
		if _, err := p.client.Do(ctx, http.MethodPatch, resourcePath(resource, id), data, header); err != nil {
			result.Errors[id] = err
			continue
		}
		result.IDs = append(result.IDs, id)
	}
	return result, nil
}

// Delete removes a record by id
func (p *Provider) Delete(ctx context.Context, resource string, id any) (record Record, err error) {
	defer p.instrument(resource, OperationDelete, time.Now(), &err)

	resp, err := p.client.Do(ctx, http.MethodDelete, resourcePath(resource, id), nil, nil)
	if err != nil {
		return nil, err
	}

	if len(resp.JSON) == 0 {
		return Record{"id": id}, nil
	}
	return decodeRecord(resp.JSON, "Delete")
}

// DeleteMany deletes each id individually with per-item error isolation
func (p *Provider) DeleteMany(ctx context.Context, resource string, ids []any) (result *BulkResult, err error) {
	defer p.instrument(resource, OperationDeleteMany, time.Now(), &err)

	result = &BulkResult{Errors: make(map[any]error)}
	for _, id := range ids {
		if _, err := p.client.Do(ctx, http.MethodDelete, resourcePath(resource, id), nil, nil); err != nil {
			result.Errors[id] = err
			continue
		}
		result.IDs = append(result.IDs, id)
	}
	return result, nil
}

// parseList decodes a paginated response body and its Content-Range total
func parseList(op OperationType, resp *httpclient.Response) (*ListResult, error) {
	total, err := parseContentRange(resp.Headers.Get("Content-Range"))
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(resp.JSON, op.String())
	if err != nil {
		return nil, err
	}

	return &ListResult{Records: records, Total: total}, nil
}

// instrument records the duration and the status counter for a finished
// call, exactly one status increment per call
func (p *Provider) instrument(resource string, op OperationType, start time.Time, err *error) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordRequestDuration(resource, op.String(), time.Since(start))
	status := "ok"
	if *err != nil {
		status = "error"
	}
	p.metrics.RecordRequest(resource, op.String(), status)
}

// decodeRecord unmarshals a single-record response body
func decodeRecord(raw json.RawMessage, method string) (Record, error) {
	if len(raw) == 0 {
		return nil, errors.WrapContract(
			fmt.Errorf("empty response body"), "Provider", method, "decode record")
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.WrapContract(err, "Provider", method, "decode record")
	}
	return record, nil
}

// decodeRecords unmarshals a record-array response body
func decodeRecords(raw json.RawMessage, method string) ([]Record, error) {
	if len(raw) == 0 {
		return nil, errors.WrapContract(
			fmt.Errorf("empty response body"), "Provider", method, "decode records")
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.WrapContract(err, "Provider", method, "decode records")
	}
	return records, nil
}

// bulkRecords renders a bulk outcome as id-only records for Do callers
func bulkRecords(bulk *BulkResult) []Record {
	records := make([]Record, 0, len(bulk.IDs))
	for _, id := range bulk.IDs {
		records = append(records, Record{"id": id})
	}
	return records
}

package provider

// OperationType tags the abstract operation a Request carries
type OperationType int

// Supported operation types
const (
	OperationGetList OperationType = iota
	OperationGetOne
	OperationGetMany
	OperationGetManyReference
	OperationCreate
	OperationUpdate
	OperationUpdateMany
	OperationDelete
	OperationDeleteMany
)

// String returns the string representation of OperationType
func (ot OperationType) String() string {
	switch ot {
	case OperationGetList:
		return "getList"
	case OperationGetOne:
		return "getOne"
	case OperationGetMany:
		return "getMany"
	case OperationGetManyReference:
		return "getManyReference"
	case OperationCreate:
		return "create"
	case OperationUpdate:
		return "update"
	case OperationUpdateMany:
		return "updateMany"
	case OperationDelete:
		return "delete"
	case OperationDeleteMany:
		return "deleteMany"
	default:
		return "unknown"
	}
}

// Record is an opaque mapping from field name to value. Records carry an
// "id" field (string or number) and, for updatable resources, an "eTag"
// field used for optimistic-concurrency control.
type Record map[string]any

// ID returns the record's id field, if present
func (r Record) ID() (any, bool) {
	id, ok := r["id"]
	return id, ok
}

// ETag returns the record's eTag field as a string, if present
func (r Record) ETag() (string, bool) {
	raw, ok := r["eTag"]
	if !ok {
		return "", false
	}
	etag, ok := raw.(string)
	return etag, ok && etag != ""
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// SortOrder is the requested sort direction
type SortOrder string

// Sort directions. Anything other than ascending is encoded as descending.
const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

// Sort names the field and direction of a list request
type Sort struct {
	Field string
	Order SortOrder
}

// Pagination selects the page window of a list request
type Pagination struct {
	Page    int
	PerPage int
}

// Request is the tagged operation variant the adapter translates into a
// concrete HTTP request. Only the fields relevant to the Type are read.
type Request struct {
	Type     OperationType
	Resource string

	// getList / getManyReference
	Sort       Sort
	Pagination Pagination
	Filter     map[string]any

	// getManyReference
	Target   string
	TargetID any

	// getOne / update / delete
	ID any

	// getMany / updateMany / deleteMany
	IDs []any

	// create / update / updateMany
	Data Record

	// update
	PreviousData Record
}

// Result is the abstract outcome of an operation. Records is set for list
// and many results, Record for single-record results, and Total only for
// paginated reads.
type Result struct {
	Records []Record
	Record  Record
	Total   int
}

// BulkResult aggregates the per-item outcomes of updateMany/deleteMany
// fan-out. Failures are isolated per id; successful ids are always
// reported even when siblings fail.
type BulkResult struct {
	IDs    []any
	Errors map[any]error
}

// Err returns the first per-item error, or nil if every item succeeded
func (br *BulkResult) Err() error {
	for _, err := range br.Errors {
		return err
	}
	return nil
}

package adapter

type ResultType int

const (
	// ResultOK is an acknowledgement with no payload.
	ResultOK ResultType = iota
	ResultNil
	ResultBulk
	ResultInt
	ResultArray
)

type Result struct {
	Type ResultType
	Str  string
	Int  int64
	Arr  []string
}

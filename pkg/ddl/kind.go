package ddl

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform snake -yaml -text -output kind.gen.go

// Kind identifies the type of object a statement creates or acts on.
type Kind int

const (
	KindTable Kind = iota
	KindStage
	KindFileFormat
	KindStream
	KindTask
	KindPut
	KindCopyInto
	KindSQL
)

// Tag returns the YAML tag used for the kind in workflow files.
func (k Kind) Tag() string {
	return "!" + k.String()
}

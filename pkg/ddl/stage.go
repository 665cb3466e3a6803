package ddl

import (
	"fmt"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

type StorageIntegration string

const (
	StorageS3           StorageIntegration = "S3"
	StorageGCS          StorageIntegration = "GCS"
	StorageAzure        StorageIntegration = "AZURE"
	StorageS3Compatible StorageIntegration = "S3_COMPATIBLE"
)

// StageParams renders the location clause of a stage.
type StageParams interface {
	SQL() string
}

func parenthesized(name string, m map[string]string) string {
	return fmt.Sprintf("%s = (%s)", name, strings.Join(keyValues(m), " "))
}

type InternalStageParams struct {
	URL        string
	Encryption map[string]string
}

func (p InternalStageParams) SQL() string {
	var parts clauses
	if p.URL != "" {
		parts.addf("URL = '%s'", p.URL)
	}
	if len(p.Encryption) > 0 {
		parts.add(parenthesized("ENCRYPTION", p.Encryption))
	}
	return parts.join(" ")
}

type S3StageParams struct {
	URL                string
	StorageIntegration string
	Credentials        map[string]string
	Encryption         map[string]string
}

func (p S3StageParams) SQL() string {
	parts := clauses{fmt.Sprintf("URL = '%s'", p.URL)}
	if p.StorageIntegration != "" {
		parts.add("STORAGE_INTEGRATION = " + p.StorageIntegration)
	}
	if len(p.Credentials) > 0 {
		parts.add(parenthesized("CREDENTIALS", p.Credentials))
	}
	if len(p.Encryption) > 0 {
		parts.add(parenthesized("ENCRYPTION", p.Encryption))
	}
	return parts.join(" ")
}

// ExternalStageParams covers GCS and Azure stages, which both require a
// storage integration.
type ExternalStageParams struct {
	Provider           StorageIntegration
	URL                string
	StorageIntegration string
	Encryption         map[string]string
}

func (p ExternalStageParams) SQL() string {
	parts := clauses{
		fmt.Sprintf("URL = '%s'", p.URL),
		"STORAGE_INTEGRATION = " + p.StorageIntegration,
	}
	if len(p.Encryption) > 0 {
		parts.add(parenthesized("ENCRYPTION", p.Encryption))
	}
	return parts.join(" ")
}

func GCSStageParams(url, integration string) ExternalStageParams {
	return ExternalStageParams{Provider: StorageGCS, URL: url, StorageIntegration: integration}
}

func AzureStageParams(url, integration string) ExternalStageParams {
	return ExternalStageParams{Provider: StorageAzure, URL: url, StorageIntegration: integration}
}

type S3CompatibleStageParams struct {
	URL                string
	StorageIntegration string
	Endpoint           string
	Encryption         map[string]string
}

func (p S3CompatibleStageParams) SQL() string {
	parts := clauses{
		fmt.Sprintf("URL = '%s'", p.URL),
		"STORAGE_INTEGRATION = " + p.StorageIntegration,
		fmt.Sprintf("ENDPOINT = '%s'", p.Endpoint),
	}
	if len(p.Encryption) > 0 {
		parts.add(parenthesized("ENCRYPTION", p.Encryption))
	}
	return parts.join(" ")
}

// DirectoryTable configures the directory table of a stage. The provider
// specific fields are only rendered when set.
type DirectoryTable struct {
	Enable                  bool   `yaml:"enable" json:"enable"`
	RefreshOnCreate         bool   `yaml:"refresh_on_create" json:"refresh_on_create"`
	AWSSNSTopic             string `yaml:"aws_sns_topic,omitempty" json:"aws_sns_topic,omitempty"`
	AWSRole                 string `yaml:"aws_role,omitempty" json:"aws_role,omitempty"`
	NotificationIntegration string `yaml:"notification_integration,omitempty" json:"notification_integration,omitempty"`
}

func NewDirectoryTable() *DirectoryTable {
	return &DirectoryTable{Enable: true, RefreshOnCreate: true}
}

func (d *DirectoryTable) UnmarshalYAML(value *yaml.Node) error {
	type directoryAlias DirectoryTable
	alias := directoryAlias(*NewDirectoryTable())
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*d = DirectoryTable(alias)
	return nil
}

func (d *DirectoryTable) SQL() string {
	var parts clauses
	if d.Enable {
		parts.add("ENABLE = true")
	}
	if d.RefreshOnCreate {
		parts.add("REFRESH_ON_CREATE = true")
	}
	if d.AWSSNSTopic != "" {
		parts.addf("AWS_SNS_TOPIC = '%s'", d.AWSSNSTopic)
	}
	if d.AWSRole != "" {
		parts.addf("AWS_ROLE = '%s'", d.AWSRole)
	}
	if d.NotificationIntegration != "" {
		parts.add("NOTIFICATION_INTEGRATION = " + d.NotificationIntegration)
	}
	return "DIRECTORY = (" + parts.join(" ") + ")"
}

type Stage struct {
	Name        string
	Params      StageParams
	Directory   *DirectoryTable
	FileFormat  *FileFormatSpec
	Comment     string
	Tags        map[string]string
	OrReplace   bool
	IfNotExists bool
	Temporary   bool
}

func (s *Stage) Kind() Kind         { return KindStage }
func (s *Stage) ObjectName() string { return s.Name }

func (s *Stage) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("stage: %w", ErrMissingName)
	}
	switch p := s.Params.(type) {
	case S3StageParams:
		if p.URL == "" {
			return missing(KindStage, "url")
		}
	case ExternalStageParams:
		if p.URL == "" || p.StorageIntegration == "" {
			return missing(KindStage, "url and storage_integration")
		}
	case S3CompatibleStageParams:
		if p.URL == "" || p.StorageIntegration == "" || p.Endpoint == "" {
			return missing(KindStage, "url, storage_integration and endpoint")
		}
	}
	return nil
}

func (s *Stage) SQL() string {
	var parts clauses
	if s.OrReplace {
		parts.add("CREATE OR REPLACE")
	} else {
		parts.add("CREATE")
	}
	if s.Temporary {
		parts.add("TEMPORARY")
	}
	parts.add("STAGE")
	if s.IfNotExists {
		parts.add("IF NOT EXISTS")
	}
	parts.add(s.Name)
	if s.Params != nil {
		if params := s.Params.SQL(); params != "" {
			parts.add(params)
		}
	}
	if s.Directory != nil {
		parts.add(s.Directory.SQL())
	}
	if s.FileFormat != nil {
		parts.add("FILE_FORMAT = (" + s.FileFormat.SQL() + ")")
	}
	if s.Comment != "" {
		parts.add("COMMENT = " + literal(s.Comment))
	}
	if len(s.Tags) > 0 {
		parts.add(parenthesized("TAGS", s.Tags))
	}
	return parts.join(" ")
}

// stageDocument is the YAML shape of a stage. The provider and location
// fields are folded into Params.
type stageDocument struct {
	Name               string            `yaml:"name"`
	Provider           string            `yaml:"provider,omitempty"`
	URL                string            `yaml:"url,omitempty"`
	StorageIntegration string            `yaml:"storage_integration,omitempty"`
	Endpoint           string            `yaml:"endpoint,omitempty"`
	Credentials        map[string]string `yaml:"credentials,omitempty"`
	Encryption         map[string]string `yaml:"encryption,omitempty"`
	Directory          *DirectoryTable   `yaml:"directory,omitempty"`
	FileFormat         *FileFormatSpec   `yaml:"file_format,omitempty"`
	Comment            string            `yaml:"comment,omitempty"`
	Tags               map[string]string `yaml:"tags,omitempty"`
	OrReplace          bool              `yaml:"or_replace,omitempty"`
	IfNotExists        bool              `yaml:"if_not_exists,omitempty"`
	Temporary          bool              `yaml:"temporary,omitempty"`
}

func inferProvider(doc stageDocument) StorageIntegration {
	switch {
	case doc.Provider != "":
		return StorageIntegration(strings.ToUpper(doc.Provider))
	case doc.Endpoint != "":
		return StorageS3Compatible
	case strings.HasPrefix(doc.URL, "s3://"):
		return StorageS3
	case strings.HasPrefix(doc.URL, "gcs://"):
		return StorageGCS
	case strings.HasPrefix(doc.URL, "azure://"):
		return StorageAzure
	}
	return ""
}

func (s *Stage) UnmarshalYAML(value *yaml.Node) error {
	var doc stageDocument
	if err := value.Decode(&doc); err != nil {
		return err
	}

	*s = Stage{
		Name:        doc.Name,
		Directory:   doc.Directory,
		FileFormat:  doc.FileFormat,
		Comment:     doc.Comment,
		Tags:        doc.Tags,
		OrReplace:   doc.OrReplace,
		IfNotExists: doc.IfNotExists,
		Temporary:   doc.Temporary,
	}

	switch provider := inferProvider(doc); provider {
	case "", "INTERNAL":
		if doc.URL != "" || len(doc.Encryption) > 0 {
			s.Params = InternalStageParams{URL: doc.URL, Encryption: doc.Encryption}
		}
	case StorageS3:
		s.Params = S3StageParams{
			URL:                doc.URL,
			StorageIntegration: doc.StorageIntegration,
			Credentials:        doc.Credentials,
			Encryption:         doc.Encryption,
		}
	case StorageGCS, StorageAzure:
		s.Params = ExternalStageParams{
			Provider:           provider,
			URL:                doc.URL,
			StorageIntegration: doc.StorageIntegration,
			Encryption:         doc.Encryption,
		}
	case StorageS3Compatible:
		s.Params = S3CompatibleStageParams{
			URL:                doc.URL,
			StorageIntegration: doc.StorageIntegration,
			Endpoint:           doc.Endpoint,
			Encryption:         doc.Encryption,
		}
	default:
		return fmt.Errorf("line %d: unknown stage provider %q", value.Line, doc.Provider)
	}
	return nil
}

func (s Stage) MarshalYAML() (interface{}, error) {
	doc := stageDocument{
		Name:        s.Name,
		Directory:   s.Directory,
		FileFormat:  s.FileFormat,
		Comment:     s.Comment,
		Tags:        s.Tags,
		OrReplace:   s.OrReplace,
		IfNotExists: s.IfNotExists,
		Temporary:   s.Temporary,
	}
	switch p := s.Params.(type) {
	case InternalStageParams:
		doc.URL, doc.Encryption = p.URL, p.Encryption
	case S3StageParams:
		doc.Provider = "s3"
		doc.URL, doc.StorageIntegration = p.URL, p.StorageIntegration
		doc.Credentials, doc.Encryption = p.Credentials, p.Encryption
	case ExternalStageParams:
		doc.Provider = strings.ToLower(string(p.Provider))
		doc.URL, doc.StorageIntegration, doc.Encryption = p.URL, p.StorageIntegration, p.Encryption
	case S3CompatibleStageParams:
		doc.Provider = "s3_compatible"
		doc.URL, doc.StorageIntegration = p.URL, p.StorageIntegration
		doc.Endpoint, doc.Encryption = p.Endpoint, p.Encryption
	}
	return doc, nil
}

type StageBuilder struct {
	stage Stage
}

func NewStage(name string) *StageBuilder {
	return &StageBuilder{stage: Stage{Name: name}}
}

func (b *StageBuilder) WithParams(params StageParams) *StageBuilder {
	b.stage.Params = params
	return b
}

func (b *StageBuilder) WithDirectoryTable(directory *DirectoryTable) *StageBuilder {
	b.stage.Directory = directory
	return b
}

func (b *StageBuilder) WithFileFormat(spec *FileFormatSpec) *StageBuilder {
	b.stage.FileFormat = spec
	return b
}

func (b *StageBuilder) WithComment(comment string) *StageBuilder {
	b.stage.Comment = comment
	return b
}

func (b *StageBuilder) WithTag(key, value string) *StageBuilder {
	if b.stage.Tags == nil {
		b.stage.Tags = make(map[string]string)
	}
	b.stage.Tags[key] = value
	return b
}

func (b *StageBuilder) WithCreateOrReplace() *StageBuilder {
	b.stage.OrReplace = true
	return b
}

func (b *StageBuilder) WithCreateIfNotExists() *StageBuilder {
	b.stage.IfNotExists = true
	return b
}

func (b *StageBuilder) WithTemporary() *StageBuilder {
	b.stage.Temporary = true
	return b
}

func (b *StageBuilder) Build() (*Stage, error) {
	s := b.stage
	s.Tags = maps.Clone(s.Tags)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

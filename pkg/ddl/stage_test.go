package ddl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStageSQL(t *testing.T) {
	tests := []struct {
		name     string
		builder  *StageBuilder
		expected string
	}{
		{
			name: "internal with named format",
			builder: NewStage("my_stage").
				WithCreateOrReplace().
				WithFileFormat(NamedFormat("my_csv")).
				WithComment("raw files"),
			expected: "CREATE OR REPLACE STAGE my_stage FILE_FORMAT = (FORMAT_NAME = 'my_csv') COMMENT = 'raw files'",
		},
		{
			name: "temporary with inline format",
			builder: NewStage("tmp").
				WithTemporary().
				WithCreateIfNotExists().
				WithDirectoryTable(NewDirectoryTable()).
				WithFileFormat(InlineFormat(NewCSVOptions().WithSkipHeader(1).WithFieldDelimiter(","))),
			expected: "CREATE TEMPORARY STAGE IF NOT EXISTS tmp DIRECTORY = (ENABLE = true REFRESH_ON_CREATE = true) " +
				"FILE_FORMAT = (TYPE = CSV FIELD_DELIMITER = ',' SKIP_HEADER = 1)",
		},
		{
			name: "s3",
			builder: NewStage("s3_stage").
				WithParams(S3StageParams{
					URL:                "s3://bucket/path/",
					StorageIntegration: "s3_int",
					Encryption:         map[string]string{"TYPE": "AWS_SSE_KMS", "KMS_KEY_ID": "key"},
				}).
				WithDirectoryTable(&DirectoryTable{Enable: true, AWSSNSTopic: "arn:topic"}).
				WithTag("env", "dev"),
			expected: "CREATE STAGE s3_stage URL = 's3://bucket/path/' STORAGE_INTEGRATION = s3_int " +
				"ENCRYPTION = (KMS_KEY_ID = 'key' TYPE = 'AWS_SSE_KMS') DIRECTORY = (ENABLE = true AWS_SNS_TOPIC = 'arn:topic') " +
				"TAGS = (env = 'dev')",
		},
		{
			name: "s3 with credentials",
			builder: NewStage("creds").WithParams(S3StageParams{
				URL:         "s3://bucket/",
				Credentials: map[string]string{"AWS_KEY_ID": "id", "AWS_SECRET_KEY": "secret"},
			}),
			expected: "CREATE STAGE creds URL = 's3://bucket/' CREDENTIALS = (AWS_KEY_ID = 'id' AWS_SECRET_KEY = 'secret')",
		},
		{
			name:     "gcs",
			builder:  NewStage("g").WithParams(GCSStageParams("gcs://b/p", "gcs_int")),
			expected: "CREATE STAGE g URL = 'gcs://b/p' STORAGE_INTEGRATION = gcs_int",
		},
		{
			name: "azure with notifications",
			builder: NewStage("az").
				WithParams(AzureStageParams("azure://acct.blob.core.windows.net/c", "az_int")).
				WithDirectoryTable(&DirectoryTable{Enable: true, NotificationIntegration: "az_notify"}),
			expected: "CREATE STAGE az URL = 'azure://acct.blob.core.windows.net/c' STORAGE_INTEGRATION = az_int " +
				"DIRECTORY = (ENABLE = true NOTIFICATION_INTEGRATION = az_notify)",
		},
		{
			name: "s3 compatible",
			builder: NewStage("c").WithParams(S3CompatibleStageParams{
				URL:                "s3compat://b/",
				StorageIntegration: "i",
				Endpoint:           "minio.local",
			}),
			expected: "CREATE STAGE c URL = 's3compat://b/' STORAGE_INTEGRATION = i ENDPOINT = 'minio.local'",
		},
		{
			name:     "internal with url",
			builder:  NewStage("i").WithParams(InternalStageParams{URL: "path/"}),
			expected: "CREATE STAGE i URL = 'path/'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stage.SQL())
		})
	}
}

func TestStageValidation(t *testing.T) {
	_, err := NewStage("").Build()
	assert.True(t, errors.Is(err, ErrMissingName))

	_, err = NewStage("g").WithParams(ExternalStageParams{Provider: StorageGCS, URL: "gcs://b"}).Build()
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = NewStage("c").WithParams(S3CompatibleStageParams{URL: "s3compat://b", StorageIntegration: "i"}).Build()
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestStageYAML(t *testing.T) {
	doc := `
name: landing
url: s3://bucket/landing/
storage_integration: s3_int
directory:
  aws_sns_topic: arn:aws:sns:topic
file_format:
  type: json
  strip_outer_array: true
`
	var stage Stage
	require.NoError(t, yaml.Unmarshal([]byte(doc), &stage))
	assert.IsType(t, S3StageParams{}, stage.Params)
	assert.Equal(t,
		"CREATE STAGE landing URL = 's3://bucket/landing/' STORAGE_INTEGRATION = s3_int "+
			"DIRECTORY = (ENABLE = true REFRESH_ON_CREATE = true AWS_SNS_TOPIC = 'arn:aws:sns:topic') "+
			"FILE_FORMAT = (TYPE = JSON STRIP_OUTER_ARRAY = TRUE)",
		stage.SQL())

	out, err := yaml.Marshal(stage)
	require.NoError(t, err)
	var again Stage
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, stage.SQL(), again.SQL())

	var named Stage
	require.NoError(t, yaml.Unmarshal([]byte("name: plain\nfile_format: csv_fmt\n"), &named))
	assert.Nil(t, named.Params)
	assert.Equal(t, "CREATE STAGE plain FILE_FORMAT = (FORMAT_NAME = 'csv_fmt')", named.SQL())

	var gcs Stage
	require.NoError(t, yaml.Unmarshal([]byte("name: g\nurl: gcs://b/\nstorage_integration: gi\n"), &gcs))
	assert.Equal(t, "CREATE STAGE g URL = 'gcs://b/' STORAGE_INTEGRATION = gi", gcs.SQL())

	var bad Stage
	assert.Error(t, yaml.Unmarshal([]byte("name: x\nprovider: ftp\n"), &bad))
}

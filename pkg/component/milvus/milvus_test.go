package milvus

import (
	"testing"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchemaStringPrimaryKey(t *testing.T) {
	schema := buildSchema(&CollectionSchema{
		Name:        "docs",
		Description: "knowledge base",
		Dimension:   768,
		MetaFields: []MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "page", DataType: entity.FieldTypeInt64},
		},
	})

	assert.Equal(t, "docs", schema.CollectionName)
	assert.False(t, schema.AutoID)

	var pk *entity.Field
	fields := make(map[string]*entity.Field, len(schema.Fields))
	for _, f := range schema.Fields {
		fields[f.Name] = f
		if f.PrimaryKey {
			pk = f
		}
	}

	// 主键为调用方提供的内容哈希，重复写入同一主键覆盖而不是新增行
	require.NotNil(t, pk)
	assert.Equal(t, "id", pk.Name)
	assert.Equal(t, entity.FieldTypeVarChar, pk.DataType)
	assert.False(t, pk.AutoID)
	assert.Equal(t, "64", pk.TypeParams[entity.TypeParamMaxLength])

	embedding, ok := fields["embedding"]
	require.True(t, ok)
	assert.Equal(t, entity.FieldTypeFloatVector, embedding.DataType)
	assert.Equal(t, "768", embedding.TypeParams[entity.TypeParamDim])

	assert.Contains(t, fields, "document_id")
	assert.Contains(t, fields, "page")
}

func TestBuildSchemaCustomIDLength(t *testing.T) {
	schema := buildSchema(&CollectionSchema{
		Name:      "docs",
		Dimension: 8,
		IDMaxLen:  128,
	})

	for _, f := range schema.Fields {
		if f.PrimaryKey {
			assert.Equal(t, "128", f.TypeParams[entity.TypeParamMaxLength])
			return
		}
	}
	t.Fatal("primary key field not found")
}

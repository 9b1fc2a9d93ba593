package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_EveryUpHasADown(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		switch name := e.Name(); {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestFS_SeedsEveryDocumentSequence(t *testing.T) {
	seed, err := fs.ReadFile(FS, "000003_seed_document_sequences.up.sql")
	require.NoError(t, err)

	for _, prefix := range []string{"'GD-CLT-PO-26-'", "'GD-CLT-PI-26-'", "'DN-'", "'PAY-'"} {
		assert.Contains(t, string(seed), prefix)
	}
}

func TestFS_LiveBatchIndexIsPartial(t *testing.T) {
	schema, err := fs.ReadFile(FS, "000001_ledger_schema.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(schema), "CREATE UNIQUE INDEX uq_product_batches_live ON product_batches (product_id, batch_number) WHERE is_active")
}

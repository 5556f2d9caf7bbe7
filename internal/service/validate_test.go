package service

import (
	"strings"
	"testing"

	"github.com/lifeos-app/lifeos/internal/models"
)

func TestValidate(t *testing.T) {
	imp := newTestImporter(newFakeStore())

	t.Run("valid document", func(t *testing.T) {
		r := imp.Validate(fixtureDoc())
		if !r.Valid || !r.Compatible || len(r.Problems) != 0 {
			t.Errorf("report = %+v", r)
		}

		if r.EntityCounts[models.KindAccounts] != 1 {
			t.Errorf("counts = %v", r.EntityCounts)
		}
	})

	t.Run("newer major version", func(t *testing.T) {
		doc := fixtureDoc()
		doc.Schema.Version = "2.0.0"

		r := imp.Validate(doc)
		if r.Valid || r.Compatible {
			t.Errorf("report = %+v", r)
		}
	})

	t.Run("meta mismatch", func(t *testing.T) {
		doc := fixtureDoc()
		doc.Meta.TotalEntities = 3

		r := imp.Validate(doc)
		if r.Valid || !r.Compatible {
			t.Errorf("report = %+v", r)
		}
	})

	t.Run("invalid row", func(t *testing.T) {
		data := fixtureData()
		data.Dimensions[0].Code = ""
		doc := docWith(data)

		r := imp.Validate(doc)
		if r.Valid || len(r.Problems) != 1 || !strings.HasPrefix(r.Problems[0], "dimensions[0]") {
			t.Errorf("report = %+v", r)
		}

		if data.Dimensions[0].Code != "" {
			t.Error("document changed")
		}
	})

	t.Run("nil document", func(t *testing.T) {
		if r := imp.Validate(nil); r.Valid {
			t.Error("nil document reported valid")
		}
	})
}

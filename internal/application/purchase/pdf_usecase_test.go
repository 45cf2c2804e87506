package purchase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/replenishment-api/internal/application/purchase"
	"github.com/jhoicas/replenishment-api/internal/domain"
	"github.com/jhoicas/replenishment-api/internal/domain/entity"
)

type stubPDF struct{ got *entity.PurchaseRequest }

func (s *stubPDF) GeneratePurchaseOrderPDF(_ context.Context, pr *entity.PurchaseRequest) ([]byte, error) {
	s.got = pr
	return []byte("%PDF-stub"), nil
}

func TestDownloadPurchaseOrderPDF(t *testing.T) {
	f := newFixture(t)
	gen := &stubPDF{}
	uc := purchase.NewPDFUseCase(f.uc, gen)
	pr := f.create(t, item(f.icyMint.ID, 10))

	doc, name, err := uc.DownloadPurchaseOrderPDF(context.Background(), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, "PR00001.pdf", name)
	assert.Equal(t, []byte("%PDF-stub"), doc)
	require.NotNil(t, gen.got)
	assert.Len(t, gen.got.Items, 1, "el generador recibe la solicitud hidratada")

	_, _, err = uc.DownloadPurchaseOrderPDF(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

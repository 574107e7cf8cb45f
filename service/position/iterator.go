package position

import (
	"github.com/capstack/goregistrar/models"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

// Balance is one per-key entry of a bulk report.
type Balance struct {
	ShareholderID string `json:"shareholder_id"`
	SecurityID    string `json:"security_id"`
	Qty           int64  `json:"qty"`
	DisplayedQty  int64  `json:"displayed_qty"`
}

// Iterator walks the issuer's materialized positions lazily in keyset
// order. It is restartable: Seek positions it after a previously
// returned balance, so an interrupted bulk report can resume without
// re-reading what it already emitted. The sequence is finite, bounded
// by the issuer's distinct (shareholder, security) pairs.
type Iterator struct {
	tx        *gorm.DB
	issuerID  string
	batchSize int

	buf  []models.Position
	i    int
	last *models.Position
	done bool
	err  error
}

func (s *positionService) Iterate(issuerID uuid.UUID, batchSize int) *Iterator {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Iterator{
		tx:        s.tx,
		issuerID:  issuerID.String(),
		batchSize: batchSize,
	}
}

// Seek restarts the iterator just after the given key.
func (it *Iterator) Seek(shareholderID, securityID string) {
	it.last = &models.Position{
		ShareholderID: shareholderID,
		SecurityID:    securityID,
	}
	it.buf = nil
	it.i = 0
	it.done = false
	it.err = nil
}

// Next returns the following balance, or nil once the issuer's keys
// are exhausted.
func (it *Iterator) Next() (*Balance, error) {
	if it.err != nil {
		return nil, it.err
	}

	if it.i >= len(it.buf) {
		if it.done {
			return nil, nil
		}
		if err := it.fetch(); err != nil {
			it.err = err
			return nil, err
		}
		if len(it.buf) == 0 {
			return nil, nil
		}
	}

	pos := it.buf[it.i]
	it.i++
	it.last = &pos

	return &Balance{
		ShareholderID: pos.ShareholderID,
		SecurityID:    pos.SecurityID,
		Qty:           pos.Qty,
		DisplayedQty:  Displayed(pos.Qty),
	}, nil
}

func (it *Iterator) fetch() error {
	q := it.tx.Where("issuer_id = ?", it.issuerID)

	if it.last != nil {
		q = q.Where(
			"(shareholder_id, security_id) > (?, ?)",
			it.last.ShareholderID, it.last.SecurityID)
	}

	it.buf = it.buf[:0]
	it.i = 0

	if err := q.
		Order("shareholder_id, security_id").
		Limit(it.batchSize).
		Find(&it.buf).Error; err != nil {
		return storeError(err)
	}

	if len(it.buf) < it.batchSize {
		it.done = true
	}

	return nil
}

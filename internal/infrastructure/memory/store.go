// Package memory implementa los repositorios en memoria (APP_STORE=memory) para
// desarrollo local sin PostgreSQL y para pruebas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository     = (*ReceiptRepository)(nil)
	_ repository.ReturnLogRepository   = (*ReturnLogRepository)(nil)
	_ repository.UpdateLogRepository   = (*UpdateLogRepository)(nil)
	_ repository.PosSettingsRepository = (*SettingsRepository)(nil)
	_ billing.ReceiptTxRunner          = (*Store)(nil)
)

type receiptKey struct{ orderID, merchantTin string }

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	receipts map[receiptKey]entity.ReceiptRecord
	returns  []entity.ReturnLog
	updates  []entity.UpdateLog
	settings map[string]entity.PosSettings
	now      func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		receipts: make(map[receiptKey]entity.ReceiptRecord),
		settings: make(map[string]entity.PosSettings),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Receipts() *ReceiptRepository  { return &ReceiptRepository{s: s} }
func (s *Store) Returns() *ReturnLogRepository { return &ReturnLogRepository{s: s} }
func (s *Store) Updates() *UpdateLogRepository { return &UpdateLogRepository{s: s} }
func (s *Store) Settings() *SettingsRepository { return &SettingsRepository{s: s} }

// RunReceipt ejecuta fn con los repos del almacén. No hay rollback: un error a mitad
// deja aplicados los cambios previos.
func (s *Store) RunReceipt(ctx context.Context, fn func(
	receiptRepo repository.ReceiptRepository,
	updateRepo repository.UpdateLogRepository,
) error) error {
	return fn(s.Receipts(), s.Updates())
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// ── Recibos ──────────────────────────────────────────────────────────────────

// ReceiptRepository registros de envío en memoria.
type ReceiptRepository struct{ s *Store }

func (r *ReceiptRepository) Create(_ context.Context, rec *entity.ReceiptRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := receiptKey{rec.OrderID, rec.MerchantTin}
	if _, ok := r.s.receipts[k]; ok {
		return domain.ErrDuplicate
	}
	now := r.s.now()
	rec.ID = r.s.nextID()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.s.receipts[k] = *rec
	return nil
}

func (r *ReceiptRepository) Save(_ context.Context, rec *entity.ReceiptRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := receiptKey{rec.OrderID, rec.MerchantTin}
	now := r.s.now()
	if prev, ok := r.s.receipts[k]; ok {
		rec.ID, rec.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		rec.ID, rec.CreatedAt = r.s.nextID(), now
	}
	rec.UpdatedAt = now
	r.s.receipts[k] = *rec
	return nil
}

func (r *ReceiptRepository) FindByOrderIDAndTin(_ context.Context, orderID, merchantTin string) (*entity.ReceiptRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.receipts[receiptKey{orderID, merchantTin}]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *ReceiptRepository) FindLatestByOrderID(_ context.Context, orderID string) (*entity.ReceiptRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *entity.ReceiptRecord
	for _, rec := range r.s.receipts {
		if rec.OrderID != orderID {
			continue
		}
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) || (rec.UpdatedAt.Equal(latest.UpdatedAt) && rec.ID > latest.ID) {
			c := rec
			latest = &c
		}
	}
	return latest, nil
}

func (r *ReceiptRepository) FindByEbarimtID(_ context.Context, ebarimtID string) (*entity.ReceiptRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.receipts {
		if rec.EbarimtID != "" && rec.EbarimtID == ebarimtID {
			c := rec
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ReceiptRepository) List(_ context.Context, f entity.ReceiptFilter) ([]*entity.ReceiptRecord, int, error) {
	r.s.mu.RLock()
	all := make([]entity.ReceiptRecord, 0, len(r.s.receipts))
	for _, rec := range r.s.receipts {
		if f.OrderID != "" && rec.OrderID != f.OrderID {
			continue
		}
		if f.Status == "success" && !rec.Success || f.Status == "failed" && rec.Success {
			continue
		}
		all = append(all, rec)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	out := make([]*entity.ReceiptRecord, 0)
	for _, i := range page(total, f.Limit, f.Offset) {
		c := all[i]
		out = append(out, &c)
	}
	return out, total, nil
}

// ── Anulaciones ──────────────────────────────────────────────────────────────

// ReturnLogRepository anulaciones en memoria.
type ReturnLogRepository struct{ s *Store }

func (r *ReturnLogRepository) Create(_ context.Context, l *entity.ReturnLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.now()
	r.s.returns = append(r.s.returns, *l)
	return nil
}

func (r *ReturnLogRepository) List(_ context.Context, orderID string, limit, offset int) ([]*entity.ReturnLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []entity.ReturnLog
	for i := len(r.s.returns) - 1; i >= 0; i-- {
		if orderID == "" || r.s.returns[i].OrderID == orderID {
			matched = append(matched, r.s.returns[i])
		}
	}
	out := make([]*entity.ReturnLog, 0)
	for _, i := range page(len(matched), limit, offset) {
		c := matched[i]
		out = append(out, &c)
	}
	return out, len(matched), nil
}

// ── Reemplazos ───────────────────────────────────────────────────────────────

// UpdateLogRepository reemplazos en memoria.
type UpdateLogRepository struct{ s *Store }

func (r *UpdateLogRepository) Create(_ context.Context, l *entity.UpdateLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.updates {
		if u.OrderID == l.OrderID && u.OldID == l.OldID && u.NewID == l.NewID {
			return nil
		}
	}
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.now()
	r.s.updates = append(r.s.updates, *l)
	return nil
}

func (r *UpdateLogRepository) List(_ context.Context, orderID string, limit, offset int) ([]*entity.UpdateLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []entity.UpdateLog
	for i := len(r.s.updates) - 1; i >= 0; i-- {
		if orderID == "" || r.s.updates[i].OrderID == orderID {
			matched = append(matched, r.s.updates[i])
		}
	}
	out := make([]*entity.UpdateLog, 0)
	for _, i := range page(len(matched), limit, offset) {
		c := matched[i]
		out = append(out, &c)
	}
	return out, len(matched), nil
}

// ── Configuración POS ────────────────────────────────────────────────────────

// SettingsRepository configuración POS en memoria.
type SettingsRepository struct{ s *Store }

func (r *SettingsRepository) GetLatest(_ context.Context) (*entity.PosSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *entity.PosSettings
	for _, st := range r.s.settings {
		if latest == nil || st.UpdatedAt.After(latest.UpdatedAt) {
			c := st
			latest = &c
		}
	}
	return latest, nil
}

func (r *SettingsRepository) GetByMerchantTin(_ context.Context, merchantTin string) (*entity.PosSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.settings[merchantTin]; ok {
		return &st, nil
	}
	return nil, nil
}

func (r *SettingsRepository) Upsert(_ context.Context, st *entity.PosSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.UpdatedAt = r.s.now()
	r.s.settings[st.MerchantTin] = *st
	return nil
}

func (r *SettingsRepository) Delete(_ context.Context, merchantTin string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.settings[merchantTin]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.settings, merchantTin)
	return nil
}

// page índices [offset, offset+limit) acotados a total.
func page(total, limit, offset int) []int {
	if offset < 0 {
		offset = 0
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	var idx []int
	for i := offset; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

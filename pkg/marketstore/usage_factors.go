package marketstore

import (
	"context"
)

// UsageFactors returns every persisted provider factor. Called once by the
// usage ledger at construction to warm its in-memory map.
func (s *Store) UsageFactors(ctx context.Context) (map[string]float64, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
select
	provider_id,
	factor
from
	usage_factor
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	factors := map[string]float64{}
	for rows.Next() {
		var providerID string
		var factor float64
		if err = rows.Scan(&providerID, &factor); err != nil {
			return nil, err
		}
		factors[providerID] = factor
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return factors, nil
}

// UpsertUsageFactor writes through the latest observation for a provider.
func (s *Store) UpsertUsageFactor(ctx context.Context, providerID string, factor float64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	_, err := s.db.ExecContext(ctx, `
insert into usage_factor (provider_id, factor, created, modified)
values (?, ?, ?, ?)
on conflict (provider_id) do update set
	factor = excluded.factor,
	modified = excluded.modified
`, providerID, factor, now, now)
	return err
}

// DeleteUsageFactors drops all persisted factors. Reset path only.
func (s *Store) DeleteUsageFactors(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, err := s.db.ExecContext(ctx, `delete from usage_factor`)
	return err
}

package store

import (
	"time"

	"kaskelas/internal/core"
)

// seedSnapshot is the state of a brand-new fund: a few example members and
// one mandatory due, so the first screen is not empty. Payments and expenses
// always start empty.
func seedSnapshot(now time.Time) core.Snapshot {
	return core.Snapshot{
		Members: []core.Member{
			{ID: core.NewID(), Name: "Andi Pratama", NIM: "2023001", Phone: "081234567890"},
			{ID: core.NewID(), Name: "Budi Santoso", NIM: "2023002", Phone: "081234567891"},
			{ID: core.NewID(), Name: "Citra Dewi", NIM: "2023003", Phone: "081234567892"},
		},
		Dues: []core.Due{
			{ID: core.NewID(), Title: "Kas Januari", Amount: 20000, Deadline: now, Category: "Wajib"},
		},
	}
}

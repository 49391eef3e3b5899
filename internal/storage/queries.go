package storage

const (
	insertEntry = `
INSERT INTO entries (kind, category, amount_cents, occurred_on, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	listEntries = `
SELECT id, kind, category, amount_cents, occurred_on, notes, created_at
FROM entries
ORDER BY occurred_on DESC, id DESC`

	sumEntriesInRange = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM entries
WHERE occurred_on >= ? AND occurred_on <= ? AND kind <> ?`

	sumEntriesInMonth = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM entries
WHERE occurred_on >= ? AND occurred_on <= ?`

	countEntries = `SELECT COUNT(1) FROM entries`

	getWeeklyBudget = `SELECT amount_cents FROM weekly_budget WHERE week_start = ?`

	countWeeklyBudget = `SELECT COUNT(1) FROM weekly_budget WHERE week_start = ?`

	deleteWeeklyBudget = `DELETE FROM weekly_budget WHERE week_start = ?`

	insertWeeklyBudget = `INSERT INTO weekly_budget (week_start, amount_cents) VALUES (?, ?)`

	listWeeklyBudgets = `SELECT week_start, amount_cents FROM weekly_budget ORDER BY week_start DESC`
)

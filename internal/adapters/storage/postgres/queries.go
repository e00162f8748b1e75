package postgres

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_log (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    level       TEXT        NOT NULL,
    scope       TEXT        NOT NULL,
    message     TEXT        NOT NULL,
    attrs       JSONB       NOT NULL DEFAULT '{}'::jsonb
)`

const createAuditIndex = `
CREATE INDEX IF NOT EXISTS audit_log_recorded_at_idx ON audit_log (recorded_at DESC)`

const insertAuditEntry = `
INSERT INTO audit_log (recorded_at, level, scope, message, attrs)
VALUES ($1, $2, $3, $4, $5)`

const selectRecentAuditEntries = `
SELECT recorded_at, level, scope, message, attrs
FROM audit_log
ORDER BY recorded_at DESC
LIMIT $1`

const deleteAuditEntriesBefore = `
DELETE FROM audit_log
WHERE recorded_at < NOW() - $1::interval`

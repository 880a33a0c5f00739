package storage

// KeyValueSchema defines the table backing the durable key-value store.
// Values are opaque serialized blobs owned by the stores that write them.
const KeyValueSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	storage_key TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

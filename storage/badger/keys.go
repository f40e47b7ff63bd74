package badger

// Key prefixes for stored record types
const (
	ingestCheckpointPrefix = "ingchkpt"
)

// makeCheckpointKey generates the key for the ingestion checkpoint record.
func makeCheckpointKey() []byte {
	return []byte(ingestCheckpointPrefix + ":current")
}

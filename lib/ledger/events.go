package ledger

// Event is a contract event committed to the ledger.
type Event struct {
	Block   uint64
	TxID    string
	Name    string
	Payload []byte
}

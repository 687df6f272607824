package itemset

// Transaction is the set of internal item ids of one row.
// Ids appear in first-seen order and are unique within the transaction.
type Transaction []int

// Database is an immutable transaction store.
// The transaction index (tid) is the position in Transactions().
type Database struct {
	dict         *Dictionary
	transactions []Transaction
}

// Load builds a database from raw rows of item tokens.
//
// Each distinct label is assigned an internal id on first occurrence. A label
// repeated within one row is stored once. Any token that cannot be parsed
// aborts the load: the returned error is a *ParseError and no database is
// returned.
func Load(rows [][]string, kind Kind) (*Database, error) {
	dict := NewDictionary(kind)
	transactions := make([]Transaction, 0, len(rows))

	for r, row := range rows {
		tx := make(Transaction, 0, len(row))
		seen := make(map[int]struct{}, len(row))
		for c, raw := range row {
			id, err := dict.Intern(raw)
			if err != nil {
				return nil, &ParseError{Row: r, Column: c, Value: raw, Err: err}
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			tx = append(tx, id)
		}
		transactions = append(transactions, tx)
	}

	return &Database{dict: dict, transactions: transactions}, nil
}

// Dictionary returns the item dictionary.
func (db *Database) Dictionary() *Dictionary {
	return db.dict
}

// Transactions returns all transactions. Callers must not modify them.
func (db *Database) Transactions() []Transaction {
	return db.transactions
}

// Label returns the external label of an internal item id.
func (db *Database) Label(id int) Label {
	return db.dict.Label(id)
}

// ItemCount returns the number of distinct items.
func (db *Database) ItemCount() int {
	return db.dict.Len()
}

// TransactionCount returns the number of transactions.
func (db *Database) TransactionCount() int {
	return len(db.transactions)
}

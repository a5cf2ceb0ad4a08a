// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test
// finishes, so they may run in parallel against a shared database:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        books := postgres.NewPostgresBookStore(db, nil).WithTx(tx)
//	        ...
//	    })
//	}
//
// The database URL is read from DATABASE_URL, falling back to
// BOOKSHELF_TEST_DB_URL. Tests are skipped when neither is set.
package testdb

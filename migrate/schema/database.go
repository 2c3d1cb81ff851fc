package schema

// FlushFunc renders and executes everything queued so far.
type FlushFunc func(db *Database) error

// Database collects the operations of a single Up or Down run.
type Database struct {
	namer   Namer
	queue   Queue
	onFlush FlushFunc
}

// NewDatabase creates an empty model. A nil namer falls back to DefaultNamer.
func NewDatabase(namer Namer) *Database {
	if namer == nil {
		namer = DefaultNamer{}
	}
	return &Database{namer: namer}
}

// Namer returns the naming functions used for implicit constraint names
func (d *Database) Namer() Namer {
	return d.namer
}

// Queue returns the pending operations
func (d *Database) Queue() *Queue {
	return &d.queue
}

// AddTable queues a CREATE TABLE and returns the table for adding columns
func (d *Database) AddTable(name string) *Table {
	t := newTable(d, name, Add)
	d.queue.Enqueue(t)
	return t
}

// AlterTable queues an ALTER TABLE and returns the table for column changes
func (d *Database) AlterTable(name string) *Table {
	t := newTable(d, name, Alter)
	d.queue.Enqueue(t)
	return t
}

// DropTable queues a DROP TABLE
func (d *Database) DropTable(name string) {
	d.queue.Enqueue(newTable(d, name, Drop))
}

// Table returns a handle on an existing table without queueing anything.
// Use it to add constraints, indexes or rows to a table created earlier.
// While the CREATE TABLE for name is still pending the queued table itself is
// returned, so constraints added through it fold into the CREATE statement.
func (d *Database) Table(name string) *Table {
	elements := d.queue.Elements()
	for i := len(elements) - 1; i >= 0; i-- {
		if t, ok := elements[i].(*Table); ok && t.Name == name {
			if t.Modifier == Add {
				return t
			}
			break
		}
	}
	return newTable(d, name, Alter)
}

// ExecuteSQL queues a raw SQL statement
func (d *Database) ExecuteSQL(sql string) {
	d.queue.Enqueue(&SQLStatement{Base: Base{Modifier: Add}, SQL: sql})
}

// OnFlush registers the handler invoked by Flush
func (d *Database) OnFlush(fn FlushFunc) {
	d.onFlush = fn
}

// Flush asks the registered handler to render and execute the pending
// operations. Without a handler it does nothing.
func (d *Database) Flush() error {
	if d.onFlush == nil {
		return nil
	}
	return d.onFlush(d)
}

package pool

// ID the lease context id
func (lease *Lease) ID() string {
	return lease.entry.id
}

// Version the version of the seed text the context was created with
func (lease *Lease) Version() string {
	return lease.entry.version
}

// Release give the context back to the pool
func (lease *Lease) Release() {
	lease.pool.Release(lease)
}

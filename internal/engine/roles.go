package engine

// Role checks keyed by caller address. The unexported predicates assume the
// engine lock is held; every privileged operation checks its predicate
// before any state mutation.

func (e *Engine) isOwner(addr string) bool {
	return addr != "" && addr == e.owner
}

func (e *Engine) isAdmin(addr string) bool {
	_, ok := e.admins[addr]
	return ok
}

func (e *Engine) isRefiller(addr string) bool {
	_, ok := e.refillers[addr]
	return ok
}

func (e *Engine) isOwnerOrAdmin(addr string) bool {
	return e.isOwner(addr) || e.isAdmin(addr)
}

// IsOwner reports whether addr holds the owner role.
func (e *Engine) IsOwner(addr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isOwner(addr)
}

// IsAdmin reports whether addr holds the admin role.
func (e *Engine) IsAdmin(addr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isAdmin(addr)
}

// IsRefiller reports whether addr may record off-chain contributions.
func (e *Engine) IsRefiller(addr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isRefiller(addr)
}

// AddRefiller grants the refiller role. Owner or admin only; adding an
// existing refiller is a no-op.
func (e *Engine) AddRefiller(caller, addr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwnerOrAdmin(caller) {
		return ErrUnauthorized
	}
	e.refillers[addr] = struct{}{}
	return nil
}

// RemoveRefiller revokes the refiller role. Owner or admin only; removing a
// non-member is a no-op.
func (e *Engine) RemoveRefiller(caller, addr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwnerOrAdmin(caller) {
		return ErrUnauthorized
	}
	delete(e.refillers, addr)
	return nil
}

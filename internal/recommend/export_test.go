package recommend

import "time"

// SetNow reemplaza el reloj del motor en tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

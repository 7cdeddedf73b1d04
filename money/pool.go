package money

import "sync"

// balanceMapPool provides pooled, reusable currency->Decimal maps for
// scratch balance computations. The aggregate enumerator (C3) and pair
// merger (C6) do not draw from it.
var balanceMapPool = sync.Pool{
	New: func() interface{} {
		return make(map[string]Decimal, 4) // typical transaction touches 2-4 currencies
	},
}

// GetBalanceMap retrieves a pooled, empty currency->Decimal map. Callers
// must return it with PutBalanceMap when done.
func GetBalanceMap() map[string]Decimal {
	return balanceMapPool.Get().(map[string]Decimal)
}

// PutBalanceMap clears m and returns it to the pool.
func PutBalanceMap(m map[string]Decimal) {
	for k := range m {
		delete(m, k)
	}
	balanceMapPool.Put(m)
}

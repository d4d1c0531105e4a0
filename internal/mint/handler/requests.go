package handler

// Request payloads for the public and admin surfaces. Parsing stays in the
// handler; validation of domain invariants belongs to the services.

type mintRequest struct {
	Identity string `json:"identity"`
	Units    uint64 `json:"units"`
	Payment  uint64 `json:"payment"`
}

type definePoolRequest struct {
	Pool           int    `json:"pool"`
	Capacity       uint64 `json:"capacity"`
	UnitPrice      uint64 `json:"unit_price"`
	PerWalletLimit uint64 `json:"per_wallet_limit"`
	Restricted     bool   `json:"restricted"`
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

type allowlistRequest struct {
	Identity string `json:"identity"`
}

type peerRequest struct {
	Identity string `json:"identity"`
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

type authorityRequest struct {
	NewHolder string `json:"new_holder"`
}

package strategy

var (
	_ Handler = (*VanillaHandler)(nil)
	_ Handler = (*AllowlistHandler)(nil)
	_ Handler = (*WhitelistHandler)(nil)
	_ Handler = (*BalanceOfHandler)(nil)
	_ Handler = (*BalanceOfERC1155Handler)(nil)
	_ Handler = (*CheckpointableERC721Handler)(nil)

	_ PreCaller = (*BalanceOfHandler)(nil)
	_ PreCaller = (*BalanceOfERC1155Handler)(nil)
	_ PreCaller = (*CheckpointableERC721Handler)(nil)
)

// NewDefaultHandlers builds a handler for every type in addresses. Types
// without an entry are left out; an entry with an empty address is an error.
func NewDefaultHandlers(addresses map[Type]string, chain *Chain) ([]Handler, error) {
	var handlers []Handler
	for _, t := range DefaultTypes {
		address, ok := addresses[t]
		if !ok {
			continue
		}
		h, err := newDefaultHandler(t, address, chain)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func newDefaultHandler(t Type, address string, chain *Chain) (Handler, error) {
	switch t {
	case Vanilla:
		return NewVanilla(address)
	case Allowlist:
		if chain == nil {
			return NewAllowlist(address, nil, nil)
		}
		return NewAllowlist(address, chain.Pinner, chain.Strategies)
	case Whitelist:
		return NewWhitelist(address)
	case BalanceOf:
		return NewBalanceOf(address, chain)
	case BalanceOfERC1155:
		return NewBalanceOfERC1155(address, chain)
	case CheckpointableERC721:
		return NewCheckpointableERC721(address, chain)
	}
	return nil, nil
}

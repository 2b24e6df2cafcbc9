package mem

// Cells implements a cell-addressed memory with a fixed capacity.
// Pages are allocated on first store, so a large capacity costs nothing until
// it is written; unallocated cells read as 0.
type Cells struct {
	// PageSize specifies the length of every page; 0 means DefaultPageSize.
	PageSize uint

	// Limit specifies the capacity; any load or store at or past it fails
	// with a LimitError. A zero Limit means no capacity check.
	Limit uint

	pages [][]int
}

// Size returns an address one past the last allocated page.
func (m *Cells) Size() uint {
	return uint(len(m.pages)) * m.pageSize()
}

func (m *Cells) pageSize() uint {
	if m.PageSize == 0 {
		return DefaultPageSize
	}
	return m.PageSize
}

// Load returns a single value from the given address.
func (m *Cells) Load(addr uint) (int, error) {
	if err := checkLimit(m.Limit, addr, "load"); err != nil {
		return 0, err
	}
	size := m.pageSize()
	if i := addr / size; i < uint(len(m.pages)) {
		if page := m.pages[i]; page != nil {
			return page[addr%size], nil
		}
	}
	return 0, nil
}

// LoadInto reads len(buf) cells starting at addr; no partial load is done when
// the range crosses Limit.
func (m *Cells) LoadInto(addr uint, buf []int) error {
	if len(buf) == 0 {
		return nil
	}
	if err := checkLimit(m.Limit, addr+uint(len(buf))-1, "load"); err != nil {
		return err
	}
	for i := range buf {
		buf[i], _ = m.Load(addr + uint(i))
	}
	return nil
}

// Stor stores values starting at addr, allocating pages as necessary; no
// partial store is done when the range crosses Limit.
func (m *Cells) Stor(addr uint, values ...int) error {
	if len(values) == 0 {
		return nil
	}
	if err := checkLimit(m.Limit, addr+uint(len(values))-1, "stor"); err != nil {
		return err
	}
	size := m.pageSize()
	for len(values) > 0 {
		page := m.page(addr / size)
		n := copy(page[addr%size:], values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}

func (m *Cells) page(i uint) []int {
	if need := int(i) + 1 - len(m.pages); need > 0 {
		m.pages = append(m.pages, make([][]int, need)...)
	}
	page := m.pages[i]
	if page == nil {
		page = make([]int, m.pageSize())
		m.pages[i] = page
	}
	return page
}

package mem

// DefaultStringsPageSize provides a default for Strings.PageSize.
const DefaultStringsPageSize = 255

// Strings implements a string-oriented paged memory, mirroring Ints. Used
// for the read-only string constant segment, where every slot is written
// exactly once during constant materialization.
type Strings struct {
	PagedCore
	pages [][]string
}

// Load returns a single value from the given address.
func (m *Strings) Load(addr uint) (string, error) {
	if err := m.checkLimit(addr, "load"); err != nil {
		return "", err
	}

	if m.PageSize == 0 || len(m.pages) == 0 {
		return "", nil
	}

	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}

	return "", nil
}

// Stor stores any values at addr, allocating pages if necessary.
func (m *Strings) Stor(addr uint, values ...string) error {
	if len(values) == 0 {
		return nil
	}

	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}

	if m.PageSize == 0 {
		m.PageSize = DefaultStringsPageSize
	}

	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			base += skip
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}

	return nil
}

func (m *Strings) allocPage(pageID int, addr uint) (base, size uint, page []string) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if isNew {
		page = make([]string, size)
		if pageID == len(m.bases) {
			m.pages = append(m.pages, page)
		} else {
			m.pages = append(m.pages, nil)
			copy(m.pages[pageID+1:], m.pages[pageID:])
			m.pages[pageID] = page
		}
	} else {
		page = m.pages[pageID]
	}
	return base, size, page
}

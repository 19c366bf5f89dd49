package pipeline

// listLevel is one open list: its element, its item element and, for
// ordered lists, the marker type.
type listLevel struct {
	list string
	item string
	typ  string
}

func (l listLevel) open() string {
	if l.typ != "" {
		return "<" + l.list + ` type="` + l.typ + `">`
	}
	return "<" + l.list + ">"
}

func (l listLevel) close() string {
	return "</" + l.list + ">"
}

type listStack []listLevel

// addListItem brings the open lists to depth and leaves the stack ready
// for a new item of the given kind.
//
// Going deeper opens one list per missing level; every level after the
// first also opens an item, because a list may only nest inside an item.
// Going shallower closes item and list per level, then closes the item
// still open at the target depth. A different list kind at the same depth
// swaps the list element.
func (lp *lineParser) addListItem(want listLevel, depth int) {
	if depth < 1 {
		depth = 1
	}
	size := len(lp.lists)
	if size < depth {
		first := true
		for ; size < depth; size++ {
			if !first {
				lp.emit("<" + want.item + ">")
			}
			lp.emit(want.open())
			lp.lists = append(lp.lists, want)
			first = false
		}
	} else {
		for ; size > depth; size-- {
			top := lp.lists[size-1]
			lp.lists = lp.lists[:size-1]
			lp.emit("</" + top.item + ">")
			lp.emit(top.close())
		}
		lp.emit("</" + lp.lists[size-1].item + ">")
	}

	if top := lp.lists[size-1]; top != want {
		lp.emit(top.close())
		lp.emit(want.open())
		lp.lists[size-1] = want
	}
}

// closeLists closes every open item and list.
func (lp *lineParser) closeLists() {
	for i := len(lp.lists) - 1; i >= 0; i-- {
		lp.emit("</" + lp.lists[i].item + ">")
		lp.emit(lp.lists[i].close())
	}
	lp.lists = lp.lists[:0]
}

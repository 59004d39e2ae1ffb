package store

// Equal reports whether a and b denote structurally equal values: scalars,
// strings, and buffers compare by content; compounds compare their
// sub-handles positionally, recursing through Reader rather than by Handle
// identity (two separately built records with the same entries are equal
// even though content-addressing never dedups compounds). Thunk and Code
// cells are never structurally comparable; Match's Eq/Tag cases only ever
// compare scalar and string literals in practice, but the general compound
// case is implemented for completeness rather than left to panic.
func (s *Store) Equal(a, b Handle) (bool, error) {
	ra, err := s.Reader(a)
	if err != nil {
		return false, err
	}
	rb, err := s.Reader(b)
	if err != nil {
		return false, err
	}
	if ra.Kind() != rb.Kind() {
		return false, nil
	}

	switch ra.Kind() {
	case Unit, Nil:
		return true, nil
	case Bool:
		x, _ := ra.AsBool()
		y, _ := rb.AsBool()
		return x == y, nil
	case Char:
		x, _ := ra.AsChar()
		y, _ := rb.AsChar()
		return x == y, nil
	case Int, Float:
		x, _ := ra.AsNumeric()
		y, _ := rb.AsNumeric()
		if x.IsFloat || y.IsFloat {
			return x.AsFloat() == y.AsFloat(), nil
		}
		return x.I == y.I, nil
	case String:
		x, _ := ra.AsString()
		y, _ := rb.AsString()
		return x == y, nil
	case Buffer:
		x, _ := ra.AsBuffer()
		y, _ := rb.AsBuffer()
		return string(x) == string(y), nil
	case Cons:
		xh, xt, _ := ra.ConsParts()
		yh, yt, _ := rb.ConsParts()
		eqHead, err := s.Equal(xh, yh)
		if err != nil || !eqHead {
			return false, err
		}
		return s.Equal(xt, yt)
	case Tuple:
		xt, _ := ra.Tuple()
		yt, _ := rb.Tuple()
		if xt.Len() != yt.Len() {
			return false, nil
		}
		for i := 0; i < xt.Len(); i++ {
			eq, err := s.Equal(xt.Get(i), yt.Get(i))
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case Variant:
		xtag, xpay, _ := ra.VariantParts()
		ytag, ypay, _ := rb.VariantParts()
		eqTag, err := s.Equal(xtag, ytag)
		if err != nil || !eqTag {
			return false, err
		}
		return s.Equal(xpay, ypay)
	case Record:
		xr, _ := ra.Record(s)
		yr, _ := rb.Record(s)
		if xr.Len() != yr.Len() {
			return false, nil
		}
		for i, e := range xr.Entries() {
			oe := yr.Entries()[i]
			eqKey, err := s.Equal(e.Key, oe.Key)
			if err != nil || !eqKey {
				return false, err
			}
			eqVal, err := s.Equal(e.Val, oe.Val)
			if err != nil || !eqVal {
				return false, err
			}
		}
		return true, nil
	default:
		return a == b, nil
	}
}

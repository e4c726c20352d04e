package memds

import (
	"bytes"
	"strconv"

	w "github.com/CAVEconnectome/datastore-flex"
)

var _ w.Key = (*keyImpl)(nil)

type keyImpl struct {
	kind      string
	id        int64
	name      string
	parent    w.Key
	namespace string
}

func (k *keyImpl) Kind() string {
	return k.kind
}

func (k *keyImpl) ID() int64 {
	return k.id
}

func (k *keyImpl) Name() string {
	return k.name
}

func (k *keyImpl) ParentKey() w.Key {
	return k.parent
}

func (k *keyImpl) Namespace() string {
	return k.namespace
}

func (k *keyImpl) String() string {
	var buf bytes.Buffer
	k.marshal(&buf)
	return buf.String()
}

func (k *keyImpl) marshal(buf *bytes.Buffer) {
	if parent, ok := k.parent.(*keyImpl); ok && parent != nil {
		parent.marshal(buf)
	}
	buf.WriteByte('/')
	buf.WriteString(k.kind)
	buf.WriteByte(',')
	if k.name != "" {
		buf.WriteString(k.name)
	} else {
		buf.WriteString(strconv.FormatInt(k.id, 10))
	}
}

func (k *keyImpl) Equal(o w.Key) bool {
	var a w.Key = k
	var b = o
	for {
		if a == nil && b == nil {
			return true
		} else if a == nil || b == nil {
			return false
		}
		if a.Kind() != b.Kind() || a.Name() != b.Name() || a.ID() != b.ID() || a.Namespace() != b.Namespace() {
			return false
		}

		a = a.ParentKey()
		b = b.ParentKey()
	}
}

func (k *keyImpl) Incomplete() bool {
	return k.name == "" && k.id == 0
}

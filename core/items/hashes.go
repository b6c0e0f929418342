package items

import "strings"

// Hashes holds the checksums carried by roms, disks and media.
type Hashes struct {
	CRC     string `json:"crc,omitempty"`
	MD5     string `json:"md5,omitempty"`
	SHA1    string `json:"sha1,omitempty"`
	SHA256  string `json:"sha256,omitempty"`
	SHA384  string `json:"sha384,omitempty"`
	SHA512  string `json:"sha512,omitempty"`
	SpamSum string `json:"spamsum,omitempty"`
}

// Get returns the hash for a bucketing key, or "" when absent.
func (h Hashes) Get(k ItemKey) string {
	switch k {
	case KeyCRC:
		return h.CRC
	case KeyMD5:
		return h.MD5
	case KeySHA1:
		return h.SHA1
	case KeySHA256:
		return h.SHA256
	case KeySHA384:
		return h.SHA384
	case KeySHA512:
		return h.SHA512
	case KeySpamSum:
		return h.SpamSum
	}
	return ""
}

// Empty reports whether no comparable hash is present. SpamSum is fuzzy and never counts.
func (h Hashes) Empty() bool {
	for _, k := range HashTiers {
		if h.Get(k) != "" {
			return false
		}
	}
	return true
}

// Match reports whether two hash sets describe the same content: at least one
// dimension is present on both and every dimension present on both agrees.
func (h Hashes) Match(o Hashes) bool {
	shared := false
	for _, k := range HashTiers {
		a, b := h.Get(k), o.Get(k)
		if a == "" || b == "" {
			continue
		}
		if !strings.EqualFold(a, b) {
			return false
		}
		shared = true
	}
	return shared
}

// fill copies hashes missing from h out of o.
func (h *Hashes) fill(o Hashes) {
	fillString(&h.CRC, o.CRC)
	fillString(&h.MD5, o.MD5)
	fillString(&h.SHA1, o.SHA1)
	fillString(&h.SHA256, o.SHA256)
	fillString(&h.SHA384, o.SHA384)
	fillString(&h.SHA512, o.SHA512)
	fillString(&h.SpamSum, o.SpamSum)
}

func (h Hashes) sortKey() string {
	return strings.ToLower(strings.Join([]string{h.CRC, h.MD5, h.SHA1, h.SHA256, h.SHA384, h.SHA512}, "|"))
}

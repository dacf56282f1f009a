package filesystem

import (
	"github.com/arcfract/iso9660kit/pkg/descriptor"
	"github.com/arcfract/iso9660kit/pkg/encoding"
	"github.com/arcfract/iso9660kit/pkg/options"
	"github.com/arcfract/iso9660kit/pkg/susp"
)

// selected is the descriptor a Reader resolves paths against, plus
// the name encoding and SUSP presence that follow from it.
type selected struct {
	body     descriptor.Body
	nameEnc  encoding.NameEncoding
	hasSUSP  bool
}

// selectDescriptor implements spec §4.I's Any-policy preference
// order: Primary-with-SUSP, then Supplementary, then Enhanced, then
// Primary without SUSP.
func (r *Reader) selectDescriptor(policy options.DescriptorPolicy) (selected, error) {
	set := r.set
	primaryHasSUSP, err := r.primaryHasSUSP()
	if err != nil {
		return selected{}, err
	}

	switch policy {
	case options.PolicyPrimary:
		return selected{body: set.Primary.Body, nameEnc: encoding.ASCII, hasSUSP: primaryHasSUSP}, nil
	case options.PolicySupplementary:
		if s := set.SupplementaryOnly(); s != nil {
			return selected{body: s.Body, nameEnc: s.Body.EncodingOf()}, nil
		}
		return selected{}, errNoSuchDescriptor("supplementary")
	case options.PolicyEnhanced:
		if s := set.Enhanced(); s != nil {
			return selected{body: s.Body, nameEnc: s.Body.EncodingOf()}, nil
		}
		return selected{}, errNoSuchDescriptor("enhanced")
	default: // options.PolicyAny
		if primaryHasSUSP {
			return selected{body: set.Primary.Body, nameEnc: encoding.ASCII, hasSUSP: true}, nil
		}
		if s := set.SupplementaryOnly(); s != nil {
			return selected{body: s.Body, nameEnc: s.Body.EncodingOf()}, nil
		}
		if s := set.Enhanced(); s != nil {
			return selected{body: s.Body, nameEnc: s.Body.EncodingOf()}, nil
		}
		return selected{body: set.Primary.Body, nameEnc: encoding.ASCII}, nil
	}
}

type errNoSuchDescriptor string

func (e errNoSuchDescriptor) Error() string {
	return "filesystem: no " + string(e) + " descriptor present in this image"
}

// primaryHasSUSP implements the SUSP presence probe: read the
// Primary root extent and check whether any record's system-use
// trailer parses to a non-empty entry list.
func (r *Reader) primaryHasSUSP() (bool, error) {
	if r.primarySUSPProbe != nil {
		return *r.primarySUSPProbe, nil
	}
	root := r.set.Primary.Body.RootDirectoryRecord
	data, err := r.readExtent(root.ExtentLocation, root.DataLength)
	if err != nil {
		return false, err
	}
	has := false
	for off := 0; off < len(data); {
		rec, n, err := decodeRecordAt(data[off:], encoding.ASCII)
		if err != nil || n == 0 {
			break
		}
		if len(rec.SystemUse) > 0 {
			entries, err := susp.ParseEntries(rec.SystemUse, r.logger)
			if err == nil && len(entries) > 0 {
				has = true
				break
			}
		}
		off += n
	}
	r.primarySUSPProbe = &has
	return has, nil
}

package wikidump

import (
	"encoding/xml"
	"io"
)

// Namespace of the MediaWiki export format the Commons dumps use.
const Namespace = "http://www.mediawiki.org/xml/export-0.10/"

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// A user who contributed a revision.
type Contributor struct {
	ID       uint64 `xml:"id"`
	Username string `xml:"username"`
	IP       string `xml:"ip"`
}

// A revision to a page.
type Revision struct {
	ID          uint64      `xml:"id"`
	Timestamp   string      `xml:"timestamp"`
	Contributor Contributor `xml:"contributor"`
	Comment     string      `xml:"comment"`
	Text        string      `xml:"text"`
}

// A wiki page.
type Page struct {
	Title     string     `xml:"title"`
	NS        int        `xml:"ns"`
	ID        uint64     `xml:"id"`
	Revisions []Revision `xml:"revision"`
}

// Revision returns the first revision of the page, or nil if the dump
// carried none.
func (p *Page) Revision() *Revision {
	if len(p.Revisions) == 0 {
		return nil
	}
	return &p.Revisions[0]
}

// That which emits wiki pages.
type Parser struct {
	// The toplevel site info.
	SiteInfo SiteInfo
	x        *xml.Decoder
	pending  *Page
}

// NewParser gets a dump parser reading from the given reader.
//
// The siteinfo element is optional; a dump fragment that starts
// directly with pages is accepted too.
func NewParser(r io.Reader) (*Parser, error) {
	d := xml.NewDecoder(r)
	p := &Parser{x: d}

	// Position on the first child of <mediawiki>.
	for {
		t, err := d.Token()
		if err != nil {
			return nil, err
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "mediawiki":
			continue
		case "siteinfo":
			if err := d.DecodeElement(&p.SiteInfo, &se); err != nil {
				return nil, err
			}
			return p, nil
		case "page":
			p.pending = new(Page)
			if err := d.DecodeElement(p.pending, &se); err != nil {
				return nil, err
			}
			return p, nil
		default:
			if err := d.Skip(); err != nil {
				return nil, err
			}
		}
	}
}

// Next gets the next page from the parser.
//
// It returns io.EOF once the document is exhausted.  Any other error
// means the document is malformed.
func (p *Parser) Next() (*Page, error) {
	if p.pending != nil {
		rv := p.pending
		p.pending = nil
		return rv, nil
	}
	for {
		t, err := p.x.Token()
		if err != nil {
			return nil, err
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "page" {
			if err := p.x.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		rv := new(Page)
		if err := p.x.DecodeElement(rv, &se); err != nil {
			return nil, err
		}
		return rv, nil
	}
}

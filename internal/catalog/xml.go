package catalog

import (
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// XMLLoader reads catalogs shaped as
//
//	<catalog>
//	  <info chip="..." revision="..." fuse_array_size="..."/>
//	  <fuses>
//	    <fuse name="..." kind="standard" word="0" hi="1" lo="0">
//	      <redundant word="1" hi="1" lo="0"/>
//	      <opt word="0" hi="1" lo="0"/>
//	      <sub fuse="..." hi="1" lo="0"/>
//	    </fuse>
//	  </fuses>
//	  <skus>
//	    <sku name="...">
//	      <require fuse="..." spec="..."/>
//	      <iff>0x...</iff>
//	    </sku>
//	  </skus>
//	</catalog>
type XMLLoader struct{}

// Load .
func (XMLLoader) Load(r io.Reader) (*fuse.Catalog, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "parse XML catalog: %s", err)
	}

	var doc document
	if info := xmlquery.FindOne(root, "/catalog/info"); info != nil {
		doc.Info = map[string]any{}
		for _, attr := range info.Attr {
			doc.Info[attr.Name.Local] = attr.Value
		}
	}

	for _, node := range xmlquery.Find(root, "/catalog/fuses/fuse") {
		fd, err := xmlFuse(node)
		if err != nil {
			return nil, err
		}
		doc.Fuses = append(doc.Fuses, fd)
	}

	for _, node := range xmlquery.Find(root, "/catalog/skus/sku") {
		sd := skuDoc{Name: node.SelectAttr("name")}
		for _, req := range xmlquery.Find(node, "require") {
			sd.Requires = append(sd.Requires, requireDoc{Fuse: req.SelectAttr("fuse"), Spec: req.SelectAttr("spec")})
		}
		for _, iff := range xmlquery.Find(node, "iff") {
			row, err := utils.ParseUint32(iff.InnerText())
			if err != nil {
				return nil, errors.Wrapf(terrors.ErrBadParameter, "SKU %s has invalid IFF row %q", sd.Name, iff.InnerText())
			}
			sd.Iff = append(sd.Iff, row)
		}
		doc.Skus = append(doc.Skus, sd)
	}

	return doc.build()
}

func xmlFuse(node *xmlquery.Node) (fd fuseDoc, err error) {
	fd.Name = node.SelectAttr("name")
	fd.Kind = node.SelectAttr("kind")

	if fd.Kind != "pseudo" {
		if fd.Primary, err = xmlLocation(node); err != nil {
			return fd, errors.Wrapf(err, "fuse %s", fd.Name)
		}
	}
	if n := xmlquery.FindOne(node, "redundant"); n != nil {
		loc, err := xmlLocation(n)
		if err != nil {
			return fd, errors.Wrapf(err, "fuse %s redundant", fd.Name)
		}
		fd.Redundant = &loc
	}
	if n := xmlquery.FindOne(node, "opt"); n != nil {
		loc, err := xmlLocation(n)
		if err != nil {
			return fd, errors.Wrapf(err, "fuse %s opt", fd.Name)
		}
		fd.Opt = &loc
	}
	for _, n := range xmlquery.Find(node, "sub") {
		hi, lo, err := xmlRange(n)
		if err != nil {
			return fd, errors.Wrapf(err, "pseudo fuse %s", fd.Name)
		}
		fd.Subs = append(fd.Subs, subDoc{Fuse: n.SelectAttr("fuse"), Hi: hi, Lo: lo})
	}
	return fd, nil
}

func xmlLocation(node *xmlquery.Node) (fuse.Location, error) {
	word, err := utils.ParseUint32(node.SelectAttr("word"))
	if err != nil {
		return fuse.Location{}, errors.Wrapf(terrors.ErrBadParameter, "invalid word %q", node.SelectAttr("word"))
	}
	hi, lo, err := xmlRange(node)
	return fuse.Location{Word: int(word), Hi: hi, Lo: lo}, err
}

func xmlRange(node *xmlquery.Node) (hi, lo uint, err error) {
	h, err := utils.ParseUint32(node.SelectAttr("hi"))
	if err != nil {
		return 0, 0, errors.Wrapf(terrors.ErrBadParameter, "invalid hi %q", node.SelectAttr("hi"))
	}
	l, err := utils.ParseUint32(node.SelectAttr("lo"))
	if err != nil {
		return 0, 0, errors.Wrapf(terrors.ErrBadParameter, "invalid lo %q", node.SelectAttr("lo"))
	}
	return uint(h), uint(l), nil
}

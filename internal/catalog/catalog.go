// Package catalog enumerates the object and background images of a run.
//
// Objects are ordered so that their ordinal position is their class index:
// when every object file stem is an integer ("0.png", "1.png", ..., "10.png")
// they are sorted numerically, otherwise lexically by file name. Backgrounds
// form an unordered pool. A Catalog is built once and only read afterwards.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ironsheep/image-maker/internal/errors"
)

// Extensions lists the accepted image file extensions.
var Extensions = []string{".jpg", ".png", ".gif"}

// Object is one object image and the class it represents.
type Object struct {
	Class int    `json:"class"`
	Path  string `json:"path"`
}

// Catalog holds the object classes and the background pool.
type Catalog struct {
	Objects     []Object `json:"objects"`
	Backgrounds []string `json:"backgrounds"`
}

// NumClasses returns the number of object classes.
func (c *Catalog) NumClasses() int {
	return len(c.Objects)
}

// Load lists objDir and bkgDir and builds a catalog. Either directory
// yielding no images is a configuration error.
func Load(objDir, bkgDir string) (*Catalog, error) {
	objNames, err := ListImages(objDir)
	if err != nil {
		return nil, err
	}
	bkgNames, err := ListImages(bkgDir)
	if err != nil {
		return nil, err
	}
	return New(objDir, objNames, bkgDir, bkgNames)
}

// New builds a catalog from already listed file names.
func New(objDir string, objNames []string, bkgDir string, bkgNames []string) (*Catalog, error) {
	if len(objNames) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "no object images in %s", objDir)
	}
	if len(bkgNames) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "no background images in %s", bkgDir)
	}

	ordered := slices.Clone(objNames)
	SortClassNames(ordered)

	c := &Catalog{
		Objects:     make([]Object, len(ordered)),
		Backgrounds: make([]string, len(bkgNames)),
	}
	for i, name := range ordered {
		c.Objects[i] = Object{Class: i, Path: filepath.Join(objDir, name)}
	}
	for i, name := range bkgNames {
		c.Backgrounds[i] = filepath.Join(bkgDir, name)
	}
	return c, nil
}

// ListImages returns the names of regular files in dir whose extension is one
// of Extensions (case-insensitive), in directory order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "failed to list %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsImageName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// IsImageName reports whether name carries an accepted image extension.
func IsImageName(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// SortClassNames orders object file names into class order in place.
func SortClassNames(names []string) {
	stems := make(map[string]int, len(names))
	numeric := true
	for _, n := range names {
		v, err := strconv.Atoi(strings.TrimSuffix(n, filepath.Ext(n)))
		if err != nil {
			numeric = false
			break
		}
		stems[n] = v
	}

	if !numeric {
		slices.Sort(names)
		return
	}
	slices.SortStableFunc(names, func(a, b string) int {
		if d := stems[a] - stems[b]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
}

// String renders the class table, one "index path" line per object.
func (c *Catalog) String() string {
	var sb strings.Builder
	for _, o := range c.Objects {
		fmt.Fprintf(&sb, "%d %s\n", o.Class, o.Path)
	}
	return sb.String()
}

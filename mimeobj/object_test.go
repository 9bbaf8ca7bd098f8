package mimeobj_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/mimeobj"
)

func buildTree() *mimeobj.Object {
	root := &mimeobj.Object{Kind: mimeobj.Multipart, Path: "1"}
	child1 := &mimeobj.Object{Kind: mimeobj.Leaf, Path: "1.1"}
	child2 := &mimeobj.Object{Kind: mimeobj.Leaf, Path: "1.2"}
	root.Children = []*mimeobj.Object{child1, child2}
	return root
}

func TestIsMultipart(t *testing.T) {
	root := buildTree()
	assert.True(t, root.IsMultipart())
	assert.False(t, root.Children[0].IsMultipart())
}

func TestWalkVisitsEveryNodePreOrder(t *testing.T) {
	root := buildTree()
	var paths []string
	root.Walk(func(o *mimeobj.Object) { paths = append(paths, o.Path) })
	assert.Equal(t, []string{"1", "1.1", "1.2"}, paths)
}

func TestFindReturnsFirstMatch(t *testing.T) {
	root := buildTree()
	found := root.Find(func(o *mimeobj.Object) bool { return o.Path == "1.2" })
	assert.Same(t, root.Children[1], found)
}

func TestFindReturnsNilWhenNoMatch(t *testing.T) {
	root := buildTree()
	found := root.Find(func(o *mimeobj.Object) bool { return o.Path == "nope" })
	assert.Nil(t, found)
}

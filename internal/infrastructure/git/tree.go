package git

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperror "github.com/bravo68web/scribe/pkg/errors"
)

// INode is one entry of a content tree. Directories carry children,
// files are leaves.
type INode struct {
	Name     string  `json:"name"`
	IsDir    bool    `json:"is_dir"`
	Children []INode `json:"children,omitempty"`
}

// DocTree returns the document tree of the current branch
func (m *Manager) DocTree() (*INode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treeLocked(m.docsPath)
}

// AssetTree returns the asset tree of the current branch
func (m *Manager) AssetTree() (*INode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treeLocked(m.assetPath)
}

func (m *Manager) treeLocked(subPath string) (*INode, error) {
	root := filepath.Join(m.repoPath, filepath.FromSlash(subPath))
	node, err := readTree(root, filepath.Base(root))
	if err != nil {
		if os.IsNotExist(err) {
			// A branch without the subdirectory yields an empty tree
			return &INode{Name: filepath.Base(root), IsDir: true}, nil
		}
		return nil, apperror.GitError("read tree", err)
	}
	return node, nil
}

// readTree builds an INode recursively, children sorted by name with
// directories first. The .git directory never appears in a content tree.
func readTree(dir, name string) (*INode, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	node := &INode{Name: name, IsDir: true}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".git") {
			continue
		}
		if entry.IsDir() {
			child, err := readTree(filepath.Join(dir, entry.Name()), entry.Name())
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, *child)
		} else {
			node.Children = append(node.Children, INode{Name: entry.Name()})
		}
	}

	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})

	return node, nil
}

package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
)

// Occurrence is one unpinned remote reference found in a document,
// located precisely enough for the rewriter to splice a replacement.
type Occurrence struct {
	Path      string
	Job       string
	StepIndex int // 0-based; reported 1-based to users
	Line      int // 1-based, from the YAML parser
	Column    int // 1-based, from the YAML parser
	Ref       Reference
}

func (o Occurrence) String() string {
	return fmt.Sprintf("in workflow file %s: in job %s: in step #%d: %s",
		o.Path, o.Job, o.StepIndex+1, o.Ref)
}

// ScanFile reads and scans a single workflow or action file.
func ScanFile(path string) ([]Occurrence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Userf("reading %s: %v", path, err)
	}
	return Scan(path, data)
}

// Scan walks the job/step hierarchy of a workflow (keyed by "jobs") or
// action (keyed by "runs") document and returns every remote reference
// that is not pinned to a full commit identifier. A job without a steps
// list fails the whole scan: malformed documents must not be silently
// ignored.
func Scan(path string, data []byte) ([]Occurrence, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Userf("parsing %s: %v", path, err)
	}

	jobs := jobsNode(&doc)
	if jobs == nil {
		return nil, errs.Userf("%s does not look like a workflow or action", path)
	}

	var occs []Occurrence
	for i := 0; i+1 < len(jobs.Content); i += 2 {
		name := jobs.Content[i].Value
		job := jobs.Content[i+1]

		steps := mappingValue(job, "steps")
		if steps == nil || steps.Kind != yaml.SequenceNode {
			return nil, errs.Userf("cannot process job (name=%s) in %s: job has no steps", name, path)
		}

		for idx, step := range steps.Content {
			uses := mappingValue(step, "uses")
			if uses == nil || uses.Kind != yaml.ScalarNode {
				continue
			}
			raw := uses.Value
			if Classify(raw) != KindRemote {
				continue
			}
			ref := ParseReference(raw)
			if ref.Pinned() {
				continue
			}
			occs = append(occs, Occurrence{
				Path:      path,
				Job:       name,
				StepIndex: idx,
				Line:      uses.Line,
				Column:    uses.Column,
				Ref:       ref,
			})
		}
	}
	return occs, nil
}

// jobsNode returns the job mapping of a workflow or action document,
// or nil if the document has neither shape.
func jobsNode(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil
	}
	root := doc.Content[0]
	for _, key := range []string{"jobs", "runs"} {
		if n := mappingValue(root, key); n != nil && n.Kind == yaml.MappingNode {
			return n
		}
	}
	return nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

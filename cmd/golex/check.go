package main

import (
	"fmt"
)

type checkCmd struct {
	Rules string `help:"Rule-set file (YAML or JSON)" type:"existingfile" required:""`
}

func (c *checkCmd) Run(_ *Globals, e *env) error {
	rs, err := loadRulesFile(c.Rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "ok: %s (%d rules)\n", rs.Name, len(rs.Rules))
	return nil
}

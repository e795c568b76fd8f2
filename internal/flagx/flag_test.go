package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-c", "conf.json", "-x", "ignored"}
	got := FilterArgs(args, []string{"-c"})
	assert.Equal(t, []string{"-c", "conf.json"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=1"}
	got := FilterArgs(args, []string{"--config"})
	assert.Equal(t, []string{"--config=conf.json"}, got)
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-v", "-c"}
	got := FilterArgs(args, []string{"-c"})
	assert.Equal(t, []string{"-c"}, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	got := FilterArgs(nil, []string{"-c"})
	assert.Empty(t, got)
}

func TestJsonConfigFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cfdivault", "-c", "settings.json"}
	assert.Equal(t, "settings.json", JsonConfigFlags())

	os.Args = []string{"cfdivault"}
	assert.Equal(t, "", JsonConfigFlags())
}

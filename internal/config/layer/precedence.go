package layer

// Standard priority levels for source layers.
// Higher values override lower values during merging.
const (
	// PriorityUser is for the user config file.
	PriorityUser = 100

	// PriorityProject is for the project config file.
	PriorityProject = 200

	// PriorityEnv is for environment variable overrides.
	PriorityEnv = 500

	// PriorityArgs is for command-line overrides.
	PriorityArgs = 600

	// PrioritySession is the highest priority for session overrides.
	PrioritySession = 1000
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceUser:
		return PriorityUser
	case SourceProject:
		return PriorityProject
	case SourceEnv:
		return PriorityEnv
	case SourceArgs:
		return PriorityArgs
	case SourceSession:
		return PrioritySession
	default:
		return PriorityUser
	}
}

// Kind identifies one override scope of a Node.
type Kind uint8

const (
	// KindNone means no scope answered.
	KindNone Kind = iota
	// KindCustom is the custom trigger list.
	KindCustom
	// KindFilePath is the files layer matched against the full file path.
	KindFilePath
	// KindFileName is the files layer matched against the file base name.
	KindFileName
	// KindDirPath is the dirs layer matched against the full directory path.
	KindDirPath
	// KindDirName is the dirs layer matched against the directory base name.
	KindDirName
	// KindFiletype is the per-filetype option block.
	KindFiletype
	// KindDefault is the default option block.
	KindDefault
)

// Precedence lists the override scopes from highest to lowest priority.
var Precedence = []Kind{
	KindCustom,
	KindFilePath,
	KindFileName,
	KindDirPath,
	KindDirName,
	KindFiletype,
	KindDefault,
}

// String returns the scope name.
func (k Kind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindFilePath:
		return "file"
	case KindFileName:
		return "file-name"
	case KindDirPath:
		return "dir"
	case KindDirName:
		return "dir-name"
	case KindFiletype:
		return "filetype"
	case KindDefault:
		return "default"
	default:
		return "none"
	}
}

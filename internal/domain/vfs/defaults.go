package vfs

// DriveName is the single drive under the virtual root.
const DriveName = "C:"

// DesktopPath is the folder whose entries appear as desktop icons.
var DesktopPath = Path{DriveName, "Desktop"}

const aboutText = `Hi, welcome to my corner of the web.

This desktop is a small playground: open folders, edit notes in Notepad,
drag things into the Recycle Bin and bring them back again.

Everything you change is saved for your browser session.
`

const readmeText = `Projects
========

- Typing Trainer: a typing-speed game that tracks per-letter accuracy.
- Resume Tailor: generates a tailored resume from a job posting.
- Gallery: a small multi-page photo gallery.
`

// DefaultTree returns the built-in tree a new session starts with.
func DefaultTree() Tree {
	root := NewFolder()
	drive := NewFolder()
	root.Children[DriveName] = drive

	desktop := NewFolder()
	desktop.Children["About Me.txt"] = NewFile("About Me.txt", aboutText)
	desktop.Children["Typing Trainer"] = &Shortcut{Target: ShortcutTarget{URL: "/typing"}}
	desktop.Children["Resume Tailor"] = &Shortcut{Target: ShortcutTarget{URL: "/resume"}}
	drive.Children["Desktop"] = desktop

	documents := NewFolder()
	documents.Children["README.md"] = NewFile("README.md", readmeText)
	documents.Children["todo.txt"] = NewFile("todo.txt", "- water the plants\n- ship the gallery\n")
	documents.Children["Resume.pdf"] = &File{Extension: "pdf", Size: 48213}
	drive.Children["Documents"] = documents

	pictures := NewFolder()
	pictures.Children["sunset.jpg"] = &File{Extension: "jpg", Size: 245760}
	pictures.Children["mountains.png"] = &File{Extension: "png", Size: 389120}
	drive.Children["Pictures"] = pictures

	projects := NewFolder()
	projects.Children["Gallery"] = &Shortcut{Target: ShortcutTarget{URL: "/gallery"}}
	projects.Children["About"] = &Shortcut{Target: ShortcutTarget{Window: "about"}}
	drive.Children["Projects"] = projects

	return Tree{root: root}
}

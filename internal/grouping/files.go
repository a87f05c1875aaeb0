package grouping

import (
	"strings"

	"patientlink/internal/rawitem"
)

const rootFolder = "root"

// groupFolders implements the subfolder strategy. Folder paths are grouped
// verbatim in first-seen order.
func (r *groupRun) groupFolders(items []rawitem.Item) {
	var order []string
	folders := make(map[string][]rawitem.Item)
	var other []rawitem.Item

	for _, item := range items {
		if item.SourceType != rawitem.SourceFile {
			other = append(other, item)
			continue
		}
		folder := item.Metadata.FolderPath
		if folder == "" {
			folder = rootFolder
		}
		if _, ok := folders[folder]; !ok {
			order = append(order, folder)
		}
		folders[folder] = append(folders[folder], item)
	}

	for _, folder := range order {
		c := newCandidate("folder::"+folder, "Folder '"+folder+"'", r.policy.FolderIDConfidence)
		c.AddItems(folders[folder]...)

		if id, ok := r.patterns.Extract(folderLeaf(folder)); ok {
			c.SetIdentifiers(identityWithID(id))
			r.decision(c, "folder_leaf_id", "found", id)
		} else {
			c.Confidence = r.policy.FolderNoIDConfidence
			c.AddIssue("Folder grouping used but folder name does not look patient-specific.")
			r.decision(c, "folder_leaf_id", "not_found", folder)
		}
		r.add(c)
	}
	r.addIneligible(other, StrategySubfolder)
}

func folderLeaf(folder string) string {
	if i := strings.LastIndex(folder, "/"); i >= 0 {
		return folder[i+1:]
	}
	return folder
}

// groupFilenameIDs implements the id_in_filename strategy.
func (r *groupRun) groupFilenameIDs(items []rawitem.Item) {
	var order []string
	groups := make(map[string][]rawitem.Item)
	ids := make(map[string]string)
	var other []rawitem.Item

	for _, item := range items {
		if item.SourceType != rawitem.SourceFile {
			other = append(other, item)
			continue
		}
		key := "unassigned::" + item.ID
		if id, ok := r.patterns.Extract(item.Metadata.Filename); ok {
			key = "id::" + id
			ids[key] = id
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	for _, key := range order {
		if id, ok := ids[key]; ok {
			c := newCandidate(key, "ID grouping '"+key+"'", r.policy.FilenameIDConfidence)
			c.AddItems(groups[key]...)
			c.SetIdentifiers(identityWithID(id))
			r.add(c)
			continue
		}
		c := newCandidate(key, "ID grouping '"+key+"'", r.policy.UnassignedConfidence)
		c.AddItems(groups[key]...)
		c.quarantine("Unassigned file; no ID pattern match.")
		r.add(c)
		r.decision(c, "filename_id", "unassigned", groups[key][0].Metadata.Filename)
	}
	r.addIneligible(other, StrategyIDInFilename)
}

// groupSingles implements the fallback strategy.
func (r *groupRun) groupSingles(items []rawitem.Item) {
	for _, item := range items {
		c := r.single(item)
		c.AddNote("Fallback grouping: one item per candidate.")
		r.add(c)
	}
}

// addIneligible turns items the active strategy cannot place into quarantined
// singles so that no input item disappears from the output.
func (r *groupRun) addIneligible(items []rawitem.Item, strategy Strategy) {
	for _, item := range items {
		c := r.single(item)
		c.AddIssue("Item of type " + string(item.SourceType) + " is not used by the " + string(strategy) + " strategy.")
		r.add(c)
		r.decision(c, "ineligible_item", "single", string(item.SourceType))
	}
}

func (r *groupRun) single(item rawitem.Item) *Candidate {
	c := newCandidate("single::"+item.ID, "Single source item "+item.ID, r.policy.FallbackConfidence)
	c.AddItems(item)
	c.Status = StatusQuarantine
	return c
}

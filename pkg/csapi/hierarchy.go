package csapi

import (
	"context"
	"fmt"
)

// HierarchyPlan describes a laboratory tree to create level by level. The
// per-level functions receive each created parent and return its children;
// the parent foreign key is filled in before the children are sent.
type HierarchyPlan struct {
	Laboratories []*LaboratoryCreateRequest
	Storages     func(lab *Laboratory) []*StorageCreateRequest
	Sections     func(storage *Storage) []*SectionCreateRequest
	Items        func(section *Section) []*ItemCreateRequest
}

// HierarchyResult holds the per-level outcomes of SetupHierarchy.
type HierarchyResult struct {
	Laboratories *BatchResult[*Laboratory]
	Storages     *BatchResult[*Storage]
	Sections     *BatchResult[*Section]
	Items        *BatchResult[*Item]
}

// FailureCount sums the failures of every level.
func (r *HierarchyResult) FailureCount() int {
	return r.Laboratories.FailureCount() + r.Storages.FailureCount() +
		r.Sections.FailureCount() + r.Items.FailureCount()
}

// SetupHierarchy creates laboratories, then storages, sections and items. Each
// level only uses the parents that were actually created, so a failed parent
// silently drops its subtree from the next level's input.
func (b *BatchExecutor) SetupHierarchy(ctx context.Context, plan *HierarchyPlan, opts ...BatchOption) *HierarchyResult {
	result := &HierarchyResult{}

	result.Laboratories = b.CreateLaboratories(ctx, plan.Laboratories, opts...)

	var storages []*StorageCreateRequest

	if plan.Storages != nil {
		for _, lab := range result.Laboratories.Succeeded {
			for _, req := range plan.Storages(lab) {
				req.LabID = lab.ID
				storages = append(storages, req)
			}
		}
	}

	result.Storages = b.CreateStorages(ctx, storages, opts...)

	var sections []*SectionCreateRequest

	if plan.Sections != nil {
		for _, storage := range result.Storages.Succeeded {
			for _, req := range plan.Sections(storage) {
				req.StorageID = storage.ID
				sections = append(sections, req)
			}
		}
	}

	result.Sections = b.CreateSections(ctx, sections, opts...)

	var items []*ItemCreateRequest

	if plan.Items != nil {
		for _, section := range result.Sections.Succeeded {
			for _, req := range plan.Items(section) {
				req.SectionID = section.ID
				items = append(items, req)
			}
		}
	}

	result.Items = b.CreateItems(ctx, items, opts...)

	return result
}

// InventorySummary counts every resource in the hierarchy.
type InventorySummary struct {
	Laboratories int `json:"laboratories" yaml:"laboratories"`
	Storages     int `json:"storages"     yaml:"storages"`
	Sections     int `json:"sections"     yaml:"sections"`
	Items        int `json:"items"        yaml:"items"`
}

// Inventory reads the collection totals of every hierarchy level.
func (b *BatchExecutor) Inventory(ctx context.Context) (*InventorySummary, error) {
	client := b.client
	params := NewQueryParams().WithPageSize(1)
	summary := &InventorySummary{}

	labs, err := client.Laboratories().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("counting laboratories: %w", err)
	}

	summary.Laboratories = labs.Total

	storages, err := client.Storages().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("counting storages: %w", err)
	}

	summary.Storages = storages.Total

	sections, err := client.Sections().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("counting sections: %w", err)
	}

	summary.Sections = sections.Total

	items, err := client.Items().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	summary.Items = items.Total

	return summary, nil
}
